package main

import (
	"strconv"

	"github.com/spf13/cobra"
)

func (c *cli) initCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Seed the ledger with the sample assets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.run(cmd, true, "InitLedger")
		},
	}
}

func (c *cli) createCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "create <id> <color> <size> <owner> <appraisedValue>",
		Short:   "Create an asset",
		Example: "  assetctl create asset7 purple 20 Wu 900",
		Args:    cobra.ExactArgs(5),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.run(cmd, true, "CreateAsset", args...)
		},
	}
}

func (c *cli) readCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "read <id>",
		Short: "Read an asset",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.run(cmd, false, "ReadAsset", args[0])
		},
	}
}

func (c *cli) updateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "update <id> <color> <size> <owner> <appraisedValue>",
		Short: "Replace every field of an existing asset",
		Args:  cobra.ExactArgs(5),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.run(cmd, true, "UpdateAsset", args...)
		},
	}
}

func (c *cli) deleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete an asset",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.run(cmd, true, "DeleteAsset", args[0])
		},
	}
}

func (c *cli) existsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "exists <id>",
		Short: "Report whether an asset is in world state",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.run(cmd, false, "AssetExists", args[0])
		},
	}
}

func (c *cli) transferCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "transfer <id> <newOwner>",
		Short: "Transfer an asset and print its previous owner",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.run(cmd, true, "TransferAsset", args...)
		},
	}
}

func (c *cli) listCmd() *cobra.Command {
	var (
		start, end, bookmark string
		pageSize             int32
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List assets, optionally within a key range",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			switch {
			case pageSize > 0:
				return c.run(cmd, false, "GetAssetsByRangeWithPagination",
					start, end, strconv.FormatInt(int64(pageSize), 10), bookmark)
			case start != "" || end != "":
				return c.run(cmd, false, "GetAssetsByRange", start, end)
			default:
				return c.run(cmd, false, "GetAllAssets")
			}
		},
	}
	cmd.Flags().StringVar(&start, "start", "", "first key, inclusive")
	cmd.Flags().StringVar(&end, "end", "", "last key, exclusive")
	cmd.Flags().Int32Var(&pageSize, "page-size", 0, "records per page; 0 disables pagination")
	cmd.Flags().StringVar(&bookmark, "bookmark", "", "bookmark returned by the previous page")
	return cmd
}

func (c *cli) ownerCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "owner <owner>",
		Short: "List the assets held by an owner",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.run(cmd, false, "QueryAssetsByOwner", args[0])
		},
	}
}

func (c *cli) queryCmd() *cobra.Command {
	var (
		bookmark string
		pageSize int32
	)
	cmd := &cobra.Command{
		Use:     "query <selector>",
		Short:   "Run a rich query against the state database",
		Example: `  assetctl query '{"selector":{"Color":"blue"}}'`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if pageSize > 0 {
				return c.run(cmd, false, "QueryAssetsWithPagination",
					args[0], strconv.FormatInt(int64(pageSize), 10), bookmark)
			}
			return c.run(cmd, false, "QueryAssets", args[0])
		},
	}
	cmd.Flags().Int32Var(&pageSize, "page-size", 0, "records per page; 0 disables pagination")
	cmd.Flags().StringVar(&bookmark, "bookmark", "", "bookmark returned by the previous page")
	return cmd
}

func (c *cli) historyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "history <id>",
		Short: "Show every committed version of an asset",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.run(cmd, false, "GetAssetHistory", args[0])
		},
	}
}
