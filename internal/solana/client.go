package solana

import (
	"encoding/base64"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/hashicorp/go-hclog"
)

var rpcEndpoints = map[string]string{
	"mainnet-beta": "https://api.mainnet-beta.solana.com",
	"devnet":       "https://api.devnet.solana.com",
	"testnet":      "https://api.testnet.solana.com",
}

// BPF Upgradeable Loader program ID
const bpfLoaderUpgradeable = "BPFLoaderUpgradeab1e11111111111111111111111"

// ProgramInfo is on-chain program metadata.
type ProgramInfo struct {
	ProgramID        string `json:"program_id"`
	Executable       bool   `json:"executable"`
	Owner            string `json:"owner"`
	DataSize         int    `json:"data_size"`
	IsUpgradeable    bool   `json:"is_upgradeable"`
	UpgradeAuthority string `json:"upgrade_authority,omitempty"`
	LastDeploySlot   uint64 `json:"last_deploy_slot,omitempty"`
	Network          string `json:"network"`
}

// RiskAssessment summarizes deployment-level risk factors for a program.
type RiskAssessment struct {
	ProgramID       string       `json:"program_id"`
	RiskLevel       string       `json:"risk_level"`
	ProgramInfo     *ProgramInfo `json:"program_info,omitempty"`
	Warnings        []string     `json:"warnings,omitempty"`
	Recommendations []string     `json:"recommendations,omitempty"`
	Network         string       `json:"network"`
}

// Client talks to a Solana JSON-RPC endpoint.
type Client struct {
	http    *resty.Client
	network string
	log     hclog.Logger
}

func NewClient(network string, log hclog.Logger) *Client {
	url, ok := rpcEndpoints[network]
	if !ok {
		network = "mainnet-beta"
		url = rpcEndpoints[network]
	}
	http := resty.New().
		SetBaseURL(url).
		SetTimeout(15 * time.Second).
		SetRetryCount(2).
		SetHeader("Content-Type", "application/json")
	return &Client{http: http, network: network, log: log}
}

type rpcResponse struct {
	Result json.RawMessage `json:"result"`
	Error  *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

type accountInfoResult struct {
	Value *struct {
		Executable bool     `json:"executable"`
		Owner      string   `json:"owner"`
		Data       []string `json:"data"`
	} `json:"value"`
}

func (c *Client) rpcCall(method string, params []any, out any) error {
	body := map[string]any{"jsonrpc": "2.0", "id": 1, "method": method, "params": params}
	var rr rpcResponse
	resp, err := c.http.R().SetBody(body).SetResult(&rr).Post("")
	if err != nil {
		return err
	}
	if resp.StatusCode() != 200 {
		return fmt.Errorf("rpc status %d", resp.StatusCode())
	}
	if rr.Error != nil {
		return fmt.Errorf("rpc error %d: %s", rr.Error.Code, rr.Error.Message)
	}
	return json.Unmarshal(rr.Result, out)
}

func (c *Client) getAccountInfo(address string) (*accountInfoResult, error) {
	var res accountInfoResult
	err := c.rpcCall("getAccountInfo", []any{
		address,
		map[string]any{"encoding": "base64", "commitment": "confirmed"},
	}, &res)
	if err != nil {
		return nil, err
	}
	return &res, nil
}

// GetProgramInfo fetches program metadata from chain. Returns nil when the
// account does not exist.
func (c *Client) GetProgramInfo(programID string) (*ProgramInfo, error) {
	res, err := c.getAccountInfo(programID)
	if err != nil {
		return nil, err
	}
	if res.Value == nil {
		return nil, nil
	}
	info := &ProgramInfo{
		ProgramID:  programID,
		Executable: res.Value.Executable,
		Owner:      res.Value.Owner,
		Network:    c.network,
	}
	var raw []byte
	if len(res.Value.Data) > 0 {
		raw, _ = base64.StdEncoding.DecodeString(res.Value.Data[0])
		info.DataSize = len(raw)
	}
	if info.Owner == bpfLoaderUpgradeable {
		info.IsUpgradeable = true
		c.fetchUpgradeAuthority(info, raw)
	}
	return info, nil
}

// fetchUpgradeAuthority resolves the programdata account referenced by an
// upgradeable program and reads the Option<Pubkey> authority from it.
// Layout: program account = 4-byte variant (2 = Program) + programdata
// address; programdata account = 4-byte variant + u64 slot + Option<Pubkey>.
func (c *Client) fetchUpgradeAuthority(info *ProgramInfo, programData []byte) {
	if len(programData) < 36 || binary.LittleEndian.Uint32(programData[0:4]) != 2 {
		return
	}
	programdataAddr := encodeBase58(programData[4:36])
	res, err := c.getAccountInfo(programdataAddr)
	if err != nil || res.Value == nil || len(res.Value.Data) == 0 {
		if err != nil && c.log != nil {
			c.log.Debug("programdata fetch failed", "error", err)
		}
		return
	}
	pd, err := base64.StdEncoding.DecodeString(res.Value.Data[0])
	if err != nil || len(pd) < 13 {
		return
	}
	info.LastDeploySlot = binary.LittleEndian.Uint64(pd[4:12])
	if pd[12] == 1 && len(pd) >= 45 {
		info.UpgradeAuthority = encodeBase58(pd[13:45])
	}
}

// CheckProgramRisk assesses deployment-level risk factors.
func (c *Client) CheckProgramRisk(programID string) RiskAssessment {
	assessment := RiskAssessment{ProgramID: programID, RiskLevel: "Unknown", Network: c.network}

	info, err := c.GetProgramInfo(programID)
	if err != nil || info == nil {
		assessment.Recommendations = append(assessment.Recommendations,
			"Program account not found on "+c.network)
		return assessment
	}
	assessment.ProgramInfo = info

	riskScore := 0
	if info.IsUpgradeable {
		assessment.Warnings = append(assessment.Warnings,
			"Program is upgradeable: authority can modify program at any time")
		riskScore += 2
	}
	if !info.Executable {
		assessment.Warnings = append(assessment.Warnings,
			"Account is not marked as executable, may not be a program")
		riskScore += 5
	}
	if info.IsUpgradeable && info.UpgradeAuthority != "" {
		assessment.Recommendations = append(assessment.Recommendations,
			fmt.Sprintf("Verify upgrade authority %s is a multisig or governance-controlled address", info.UpgradeAuthority))
	}

	switch {
	case riskScore >= 5:
		assessment.RiskLevel = "High"
	case riskScore >= 2:
		assessment.RiskLevel = "Medium"
	default:
		assessment.RiskLevel = "Low"
	}
	return assessment
}
