package main

import (
	"fmt"

	"github.com/dewprince2005/Private-Blockchain-Implementation/backend/pkg/common"
	"github.com/dewprince2005/Private-Blockchain-Implementation/backend/pkg/fabricclient"
	"github.com/spf13/cobra"
)

// Gateway is the contract connection the commands run against.
type Gateway interface {
	SubmitTransaction(name string, args ...string) ([]byte, error)
	EvaluateTransaction(name string, args ...string) ([]byte, error)
	Close()
}

type connectFunc func(fabricclient.Options) (Gateway, error)

type cli struct {
	connect connectFunc
	opts    fabricclient.Options
}

func newRootCmd(connect connectFunc) *cobra.Command {
	cfg := common.LoadConfig()
	c := &cli{connect: connect}

	root := &cobra.Command{
		Use:           "assetctl",
		Short:         "Operate the asset-management chaincode",
		Long:          "assetctl submits and evaluates asset-management transactions through a Fabric gateway and prints the contract payload.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := root.PersistentFlags()
	flags.StringVar(&c.opts.ConfigPath, "config", cfg.FabricConfig, "connection profile")
	flags.StringVar(&c.opts.WalletPath, "wallet", cfg.WalletPath, "wallet directory")
	flags.StringVar(&c.opts.ChannelName, "channel", cfg.ChannelName, "channel name")
	flags.StringVar(&c.opts.ContractName, "chaincode", cfg.ChaincodeName, "chaincode name")
	flags.StringVar(&c.opts.MSPID, "msp", cfg.MSP, "MSP ID of the client identity")
	flags.StringVar(&c.opts.CertPath, "cert", cfg.CertPath, "client certificate, used when the wallet is empty")
	flags.StringVar(&c.opts.KeyPath, "key", cfg.KeyPath, "client private key, used when the wallet is empty")

	root.AddCommand(
		c.initCmd(),
		c.createCmd(),
		c.readCmd(),
		c.updateCmd(),
		c.deleteCmd(),
		c.existsCmd(),
		c.transferCmd(),
		c.listCmd(),
		c.ownerCmd(),
		c.queryCmd(),
		c.historyCmd(),
	)
	return root
}

// run connects, sends one transaction and prints its payload.
func (c *cli) run(cmd *cobra.Command, submit bool, name string, args ...string) error {
	gw, err := c.connect(c.opts)
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	defer gw.Close()

	call := gw.EvaluateTransaction
	if submit {
		call = gw.SubmitTransaction
	}
	payload, err := call(name, args...)
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), string(payload))
	return nil
}
