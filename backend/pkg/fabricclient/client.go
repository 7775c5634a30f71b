package fabricclient

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/hyperledger/fabric-sdk-go/pkg/common/providers/fab"
	"github.com/hyperledger/fabric-sdk-go/pkg/core/config"
	"github.com/hyperledger/fabric-sdk-go/pkg/gateway"
)

const identityLabel = "appUser"

// Options describes how to reach a contract through the Fabric gateway.
type Options struct {
	ConfigPath   string
	WalletPath   string
	ChannelName  string
	ContractName string
	MSPID        string
	CertPath     string
	KeyPath      string
}

type Client struct {
	gw       *gateway.Gateway
	network  *gateway.Network
	contract *gateway.Contract
}

func NewClient(opts Options) (*Client, error) {
	wallet, err := gateway.NewFileSystemWallet(filepath.Clean(opts.WalletPath))
	if err != nil {
		return nil, fmt.Errorf("failed to create wallet: %w", err)
	}

	if !wallet.Exists(identityLabel) {
		err = populateWallet(wallet, opts.MSPID, opts.CertPath, opts.KeyPath)
		if err != nil {
			return nil, fmt.Errorf("failed to populate wallet: %w", err)
		}
	}

	gw, err := gateway.Connect(
		gateway.WithConfig(config.FromFile(filepath.Clean(opts.ConfigPath))),
		gateway.WithIdentity(wallet, identityLabel),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to gateway: %w", err)
	}

	network, err := gw.GetNetwork(opts.ChannelName)
	if err != nil {
		gw.Close()
		return nil, fmt.Errorf("failed to get network: %w", err)
	}

	return &Client{
		gw:       gw,
		network:  network,
		contract: network.GetContract(opts.ContractName),
	}, nil
}

// SubmitTransaction endorses and commits a transaction, returning its payload.
func (c *Client) SubmitTransaction(name string, args ...string) ([]byte, error) {
	return c.contract.SubmitTransaction(name, args...)
}

// EvaluateTransaction runs a query against a single peer without committing.
func (c *Client) EvaluateTransaction(name string, args ...string) ([]byte, error) {
	return c.contract.EvaluateTransaction(name, args...)
}

// RegisterEvent subscribes to chaincode events whose name matches the filter
// regular expression. The returned func releases the registration.
func (c *Client) RegisterEvent(filter string) (<-chan *fab.CCEvent, func(), error) {
	reg, notifier, err := c.contract.RegisterEvent(filter)
	if err != nil {
		return nil, nil, err
	}
	return notifier, func() { c.contract.Unregister(reg) }, nil
}

func (c *Client) Close() {
	c.gw.Close()
}

func populateWallet(wallet *gateway.Wallet, mspID, certPath, keyPath string) error {
	cert, err := os.ReadFile(filepath.Clean(certPath))
	if err != nil {
		return err
	}

	key, err := os.ReadFile(filepath.Clean(keyPath))
	if err != nil {
		return err
	}

	identity := gateway.NewX509Identity(mspID, string(cert), string(key))

	return wallet.Put(identityLabel, identity)
}
