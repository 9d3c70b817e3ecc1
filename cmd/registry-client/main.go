// Command registry-client drives the registry API from the command
// line: registering, inspecting, and administering attestations.
package main

import (
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/ruteri/tee-attestation-registry/api"
	"github.com/ruteri/tee-attestation-registry/api/clients"
	"github.com/ruteri/tee-attestation-registry/interfaces"
)

var serverAddrFlag = &cli.StringFlag{
	Name:  "server-addr",
	Value: "http://127.0.0.1:8080",
	Usage: "registry server address",
}
var identityFlag = &cli.StringFlag{
	Name:  "identity",
	Usage: "caller identity sent with every request",
}
var timestampFlag = &cli.Uint64Flag{
	Name:  "timestamp",
	Usage: "override the evaluation time in seconds since epoch",
}
var keyFlag = &cli.StringFlag{
	Name:     "key",
	Required: true,
	Usage:    "attestation public key (base64)",
}
var metadataFlag = &cli.StringFlag{
	Name:  "metadata",
	Usage: "metadata map as a JSON object",
}

func client(cCtx *cli.Context) *clients.RegistryClient {
	return &clients.RegistryClient{
		ServerAddr: cCtx.String(serverAddrFlag.Name),
		Identity:   interfaces.Identity(cCtx.String(identityFlag.Name)),
		Timestamp:  cCtx.Uint64(timestampFlag.Name),
	}
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func parseMetadata(cCtx *cli.Context) (interfaces.Metadata, error) {
	raw := cCtx.String(metadataFlag.Name)
	if raw == "" {
		return nil, nil
	}
	var metadata interfaces.Metadata
	if err := json.Unmarshal([]byte(raw), &metadata); err != nil {
		return nil, fmt.Errorf("invalid metadata JSON: %w", err)
	}
	return metadata, nil
}

func main() {
	app := &cli.App{
		Name:  "registry-client",
		Usage: "Interact with a TEE attestation registry server",
		Flags: []cli.Flag{
			serverAddrFlag,
			identityFlag,
			timestampFlag,
		},
		Commands: []*cli.Command{
			{
				Name:  "register",
				Usage: "Register a new attestation",
				Flags: []cli.Flag{
					keyFlag,
					metadataFlag,
					&cli.StringFlag{Name: "tee-type", Required: true, Usage: "TEE type (sgx, sev, trustzone, asylo, azure, nitro, other:<name>)"},
					&cli.StringFlag{Name: "report", Required: true, Usage: "attestation report (base64)"},
					&cli.StringFlag{Name: "signature", Required: true, Usage: "report signature (base64)"},
					&cli.Uint64Flag{Name: "ttl", Value: 3600, Usage: "validity period in seconds"},
				},
				Action: func(cCtx *cli.Context) error {
					metadata, err := parseMetadata(cCtx)
					if err != nil {
						return err
					}
					att, err := client(cCtx).Register(api.RegisterRequest{
						TeeType:    cCtx.String("tee-type"),
						PublicKey:  cCtx.String(keyFlag.Name),
						Report:     cCtx.String("report"),
						Signature:  cCtx.String("signature"),
						TTLSeconds: cCtx.Uint64("ttl"),
						Metadata:   metadata,
					})
					if err != nil {
						return err
					}
					return printJSON(att)
				},
			},
			{
				Name:  "get",
				Usage: "Fetch an attestation record",
				Flags: []cli.Flag{keyFlag},
				Action: func(cCtx *cli.Context) error {
					att, err := client(cCtx).Get(cCtx.String(keyFlag.Name))
					if err != nil {
						return err
					}
					return printJSON(att)
				},
			},
			{
				Name:  "valid",
				Usage: "Check the cheap validity predicate",
				Flags: []cli.Flag{keyFlag},
				Action: func(cCtx *cli.Context) error {
					valid, err := client(cCtx).IsValid(cCtx.String(keyFlag.Name), cCtx.Uint64(timestampFlag.Name))
					if err != nil {
						return err
					}
					fmt.Println(valid)
					return nil
				},
			},
			{
				Name:  "verify",
				Usage: "Run full attestation verification",
				Flags: []cli.Flag{
					keyFlag,
					&cli.BoolFlag{Name: "skip-signature", Usage: "skip cryptographic signature verification"},
				},
				Action: func(cCtx *cli.Context) error {
					valid, err := client(cCtx).Verify(cCtx.String(keyFlag.Name), cCtx.Uint64(timestampFlag.Name), !cCtx.Bool("skip-signature"))
					if err != nil {
						return err
					}
					fmt.Println(valid)
					return nil
				},
			},
			{
				Name:  "revoke",
				Usage: "Permanently revoke an attestation",
				Flags: []cli.Flag{keyFlag},
				Action: func(cCtx *cli.Context) error {
					return client(cCtx).Revoke(cCtx.String(keyFlag.Name), cCtx.Uint64(timestampFlag.Name))
				},
			},
			{
				Name:  "extend",
				Usage: "Extend an attestation's expiration",
				Flags: []cli.Flag{
					keyFlag,
					&cli.Uint64Flag{Name: "seconds", Required: true, Usage: "seconds to add to the expiration"},
				},
				Action: func(cCtx *cli.Context) error {
					att, err := client(cCtx).Extend(cCtx.String(keyFlag.Name), cCtx.Uint64("seconds"), cCtx.Uint64(timestampFlag.Name))
					if err != nil {
						return err
					}
					return printJSON(att)
				},
			},
			{
				Name:  "update-metadata",
				Usage: "Replace an attestation's metadata",
				Flags: []cli.Flag{keyFlag, metadataFlag},
				Action: func(cCtx *cli.Context) error {
					metadata, err := parseMetadata(cCtx)
					if err != nil {
						return err
					}
					att, err := client(cCtx).UpdateMetadata(cCtx.String(keyFlag.Name), metadata, cCtx.Uint64(timestampFlag.Name))
					if err != nil {
						return err
					}
					return printJSON(att)
				},
			},
			{
				Name:  "list",
				Usage: "List registered public keys",
				Flags: []cli.Flag{
					&cli.Uint64Flag{Name: "from-index", Usage: "pagination offset"},
					&cli.Uint64Flag{Name: "limit", Value: 100, Usage: "page size"},
				},
				Action: func(cCtx *cli.Context) error {
					keys, err := client(cCtx).ListKeys(cCtx.Uint64("from-index"), cCtx.Uint64("limit"))
					if err != nil {
						return err
					}
					return printJSON(keys)
				},
			},
			{
				Name:  "list-owner",
				Usage: "List an owner's attestations",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "owner", Required: true, Usage: "owner identity"},
					&cli.Uint64Flag{Name: "from-index", Usage: "pagination offset"},
					&cli.Uint64Flag{Name: "limit", Value: 100, Usage: "page size"},
				},
				Action: func(cCtx *cli.Context) error {
					atts, err := client(cCtx).ListByOwner(interfaces.Identity(cCtx.String("owner")), cCtx.Uint64("from-index"), cCtx.Uint64("limit"))
					if err != nil {
						return err
					}
					return printJSON(atts)
				},
			},
			{
				Name:  "status",
				Usage: "Show registry admin and pause state",
				Action: func(cCtx *cli.Context) error {
					status, err := client(cCtx).Status()
					if err != nil {
						return err
					}
					return printJSON(status)
				},
			},
			{
				Name:  "pause",
				Usage: "Pause the registry",
				Action: func(cCtx *cli.Context) error {
					return client(cCtx).Pause()
				},
			},
			{
				Name:  "unpause",
				Usage: "Unpause the registry",
				Action: func(cCtx *cli.Context) error {
					return client(cCtx).Unpause()
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
