package main

import (
	"encoding/hex"
	"os"
	"sort"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/urfave/cli"
)

var listTrampolinesCommand = cli.Command{
	Name:  "listtrampolines",
	Usage: "List the known trampolines of the network.",
	Flags: []cli.Flag{
		cli.BoolFlag{
			Name:  "table",
			Usage: "print a table instead of json",
		},
	},
	Action: listTrampolines,
}

type trampolineJSON struct {
	Name    string `json:"name"`
	PubKey  string `json:"pub_key"`
	Address string `json:"address"`
}

func listTrampolines(ctx *cli.Context) error {
	cfg, err := loadConfig(ctx)
	if err != nil {
		return err
	}

	registry, err := getRegistry(ctx, cfg)
	if err != nil {
		return err
	}

	nodes := registry.Nodes()
	resp := make([]trampolineJSON, 0, len(nodes))
	for name, addr := range nodes {
		resp = append(resp, trampolineJSON{
			Name: name,
			PubKey: hex.EncodeToString(
				addr.IdentityKey.SerializeCompressed(),
			),
			Address: addr.Address.String(),
		})
	}
	sort.Slice(resp, func(i, j int) bool {
		return resp[i].Name < resp[j].Name
	})

	if !ctx.Bool("table") {
		printJSON(resp)
		return nil
	}

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.AppendHeader(table.Row{"Name", "Public Key", "Address"})
	for _, node := range resp {
		t.AppendRow(table.Row{node.Name, node.PubKey, node.Address})
	}
	t.Render()

	return nil
}
