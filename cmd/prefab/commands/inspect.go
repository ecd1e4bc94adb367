// Copyright 2026 The Prefab Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/pflag"

	"github.com/dgtforge/prefab/cmd/prefab/cli"
	"github.com/dgtforge/prefab/lib/assetfile"
	"github.com/dgtforge/prefab/lib/compress"
)

// --- inspect ---

type inspectParams struct {
	cli.JSONOutput
}

// inspectReport is the decoded header plus what can be read off the
// file without decompressing anything.
type inspectReport struct {
	Path        string    `json:"path"`
	Version     uint32    `json:"version"`
	BuildTime   time.Time `json:"build_time"`
	Checksum    string    `json:"checksum"`
	AssetCount  uint32    `json:"asset_count"`
	DataOffset  uint32    `json:"data_offset"`
	FileSize    int64     `json:"file_size"`
	PayloadSize int64     `json:"payload_size"`
	Compression string    `json:"compression"`
}

func inspectCommand() *cli.Command {
	var params inspectParams

	return &cli.Command{
		Name:    "inspect",
		Summary: "Print a container's header",
		Usage:   "prefab inspect <file> [flags]",
		Description: `Decode and print the fixed container header without touching the
payload: no decompression, no checksum verification, no registry
decode. Works on containers whose payload is damaged.

The compression codec is read off the payload's frame magic; "unknown"
means the payload does not start with a recognized frame, which verify
would report as corruption.`,
		Examples: []cli.Example{
			{
				Description: "Inspect a container",
				Command:     "prefab inspect dungeon.dgt",
			},
			{
				Description: "Header as JSON for scripting",
				Command:     "prefab inspect dungeon.dgt --json",
			},
		},
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("inspect", &params)
		},
		Run: func(args []string) error {
			if len(args) == 0 {
				return fmt.Errorf("file argument required\n\nUsage: prefab inspect <file> [flags]")
			}

			report, err := inspectContainer(args[0])
			if err != nil {
				return err
			}

			if done, err := params.EmitJSON(report); done {
				return err
			}

			writer := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintf(writer, "Path:\t%s\n", report.Path)
			fmt.Fprintf(writer, "Version:\t%d\n", report.Version)
			fmt.Fprintf(writer, "Built:\t%s\n", report.BuildTime.UTC().Format("2006-01-02 15:04:05 UTC"))
			fmt.Fprintf(writer, "Checksum:\t%s\n", report.Checksum)
			fmt.Fprintf(writer, "Assets:\t%d\n", report.AssetCount)
			fmt.Fprintf(writer, "Data Offset:\t%d\n", report.DataOffset)
			fmt.Fprintf(writer, "File Size:\t%s (%d bytes)\n", formatSize(report.FileSize), report.FileSize)
			fmt.Fprintf(writer, "Payload:\t%s (%s)\n", formatSize(report.PayloadSize), report.Compression)
			writer.Flush()
			return nil
		},
	}
}

// inspectContainer reads and decodes the header of the container at
// path, plus the payload's frame magic for codec detection.
func inspectContainer(path string) (*inspectReport, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var headerBytes [assetfile.HeaderSize]byte
	if _, err := io.ReadFull(file, headerBytes[:]); err != nil {
		return nil, fmt.Errorf("reading header of %s: %w", path, err)
	}
	header, err := assetfile.DecodeHeader(headerBytes[:])
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	info, err := file.Stat()
	if err != nil {
		return nil, err
	}

	// A truncated file can leave a negative payload size; report it
	// as-is rather than hiding the damage.
	payloadSize := info.Size() - int64(header.DataOffset)

	compression := "unknown"
	var magic [4]byte
	if n, _ := file.ReadAt(magic[:], int64(header.DataOffset)); n > 0 {
		if codec, ok := compress.Detect(magic[:n]); ok {
			compression = codec.String()
		}
	}

	return &inspectReport{
		Path:        path,
		Version:     header.Version,
		BuildTime:   header.BuildTime,
		Checksum:    assetfile.FormatDigest(header.Checksum),
		AssetCount:  header.AssetCount,
		DataOffset:  header.DataOffset,
		FileSize:    info.Size(),
		PayloadSize: payloadSize,
		Compression: compression,
	}, nil
}
