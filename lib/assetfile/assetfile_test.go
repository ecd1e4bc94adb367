// Copyright 2026 The Prefab Authors
// SPDX-License-Identifier: Apache-2.0

package assetfile

import (
	"bytes"
	"encoding/binary"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/zeebo/blake3"

	"github.com/dgtforge/prefab/lib/codec"
	"github.com/dgtforge/prefab/lib/compress"
	"github.com/dgtforge/prefab/lib/registry"
)

// testPayload builds a small payload that passes registry validation:
// one sprite, one tile, one object, one environment, one interaction,
// so EntryCount is 5.
func testPayload(t *testing.T) *registry.Payload {
	t.Helper()

	grid := registry.SpriteGrid{
		{"legion_red:0", ""},
		{"", "legion_red:1"},
	}
	spriteBlob, err := registry.EncodeBlob(grid, compress.Zstd)
	if err != nil {
		t.Fatalf("encoding sprite blob: %v", err)
	}

	runs := registry.CompressRuns([]int{1, 1, 1, 2, 2, 2})
	mapBlob, err := registry.EncodeBlob(runs, compress.Zstd)
	if err != nil {
		t.Fatalf("encoding map blob: %v", err)
	}

	return &registry.Payload{
		SpriteBank: registry.SpriteBank{
			Sprites: map[string][]byte{"scout": spriteBlob},
			Metadata: map[string]registry.CharacterMetadata{
				"scout": {Description: "a wary scout", Palette: "legion_red"},
			},
			Palettes: map[string][]string{
				"legion_red": {"#8b0000", "#cd5c5c"},
			},
		},
		Tiles: registry.TileRegistry{
			Tiles: map[string]registry.TileDefinition{
				"floor_stone": {Description: "stone floor", Pattern: registry.TileSolid, ColorID: 1, Walkable: true},
			},
		},
		Objects: registry.ObjectRegistry{
			Objects: map[string][]byte{"crate": spriteBlob},
		},
		Environments: registry.EnvironmentRegistry{
			Maps: map[string][]byte{"cellar": mapBlob},
			Dimensions: map[string]registry.Dimensions{
				"cellar": {Width: 3, Height: 2},
			},
		},
		Interactions: registry.InteractionRegistry{
			Interactions: map[string]registry.Interaction{
				"inspect_crate": {Description: "look closer", Type: registry.InteractionCustom},
			},
		},
	}
}

// writeTestContainer writes a container into a temp directory and
// returns its path and the header that was written.
func writeTestContainer(t *testing.T) (string, Header) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "assets.dgt")
	header, err := WriteFile(path, testPayload(t), WriteOptions{})
	if err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path, header
}

// patchFile applies mutate to the container bytes on disk.
func patchFile(t *testing.T, path string, mutate func(data []byte)) {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading container for patching: %v", err)
	}
	mutate(data)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("writing patched container: %v", err)
	}
}

func TestWriteOpenRoundtrip(t *testing.T) {
	path, written := writeTestContainer(t)

	archive, err := Open(path, OpenOptions{Validate: true})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer archive.Close()

	header := archive.Header()
	if header.Version != CurrentVersion {
		t.Errorf("version = %d, want %d", header.Version, CurrentVersion)
	}
	if header.AssetCount != 5 {
		t.Errorf("asset count = %d, want 5", header.AssetCount)
	}
	if header.DataOffset != HeaderSize {
		t.Errorf("data offset = %d, want %d", header.DataOffset, HeaderSize)
	}
	if header.Checksum != written.Checksum {
		t.Errorf("checksum changed across roundtrip: %s vs %s",
			FormatDigest(header.Checksum), FormatDigest(written.Checksum))
	}

	payload := archive.Payload()
	if got := payload.EntryCount(); got != 5 {
		t.Errorf("EntryCount() = %d, want 5", got)
	}
	meta, ok := payload.SpriteBank.Metadata["scout"]
	if !ok {
		t.Fatal("scout metadata missing after roundtrip")
	}
	if meta.Palette != "legion_red" {
		t.Errorf("scout palette = %q, want legion_red", meta.Palette)
	}
	if _, ok := payload.Environments.Dimensions["cellar"]; !ok {
		t.Error("cellar dimensions missing after roundtrip")
	}
}

func TestBuildTimeRoundtrip(t *testing.T) {
	want := time.Date(2026, 3, 14, 9, 26, 53, 589_793_000, time.UTC)
	path := filepath.Join(t.TempDir(), "assets.dgt")
	if _, err := WriteFile(path, testPayload(t), WriteOptions{BuildTime: want}); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	archive, err := Open(path, OpenOptions{})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer archive.Close()

	// Build time is stored as float64 seconds, so the roundtrip is
	// only microsecond-precise.
	got := archive.Header().BuildTime
	if diff := got.Sub(want); diff < -10*time.Microsecond || diff > 10*time.Microsecond {
		t.Errorf("build time = %v, want %v (diff %v)", got, want, diff)
	}
}

func TestWriteVersionOption(t *testing.T) {
	path := filepath.Join(t.TempDir(), "assets.dgt")
	header, err := WriteFile(path, testPayload(t), WriteOptions{Version: CurrentVersion})
	if err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if header.Version != CurrentVersion {
		t.Errorf("version = %d, want %d", header.Version, CurrentVersion)
	}

	if _, err := WriteFile(path, testPayload(t), WriteOptions{Version: 99}); err == nil {
		t.Fatal("WriteFile accepted version 99")
	} else if !IsUnsupportedVersion(err) {
		t.Errorf("error = %v, want an unsupported version error", err)
	}
}

func TestHeaderLayout(t *testing.T) {
	header := Header{
		Version:    CurrentVersion,
		BuildTime:  time.Unix(1700000000, 0),
		AssetCount: 42,
		DataOffset: HeaderSize,
	}
	header.Checksum[0] = 0xAB
	header.Checksum[31] = 0xCD

	buf := EncodeHeader(header)

	// The layout is load-bearing for every container ever written:
	// pin the exact field offsets.
	if !bytes.Equal(buf[0:4], []byte{'D', 'G', 'T', 0x01}) {
		t.Errorf("magic bytes = % x", buf[0:4])
	}
	if got := binary.LittleEndian.Uint32(buf[4:8]); got != CurrentVersion {
		t.Errorf("version field = %d", got)
	}
	if buf[16] != 0xAB || buf[47] != 0xCD {
		t.Errorf("checksum not at bytes 16..48: buf[16]=%x buf[47]=%x", buf[16], buf[47])
	}
	if got := binary.LittleEndian.Uint32(buf[48:52]); got != 42 {
		t.Errorf("asset count field = %d", got)
	}
	if got := binary.LittleEndian.Uint32(buf[52:56]); got != HeaderSize {
		t.Errorf("data offset field = %d", got)
	}

	decoded, err := DecodeHeader(buf[:])
	if err != nil {
		t.Fatalf("DecodeHeader: %v", err)
	}
	if decoded.AssetCount != 42 || decoded.Checksum != header.Checksum {
		t.Errorf("decoded header does not match encoded: %+v", decoded)
	}
	if !decoded.BuildTime.Equal(header.BuildTime) {
		t.Errorf("build time = %v, want %v", decoded.BuildTime, header.BuildTime)
	}
}

func TestOpenRejectsBadMagic(t *testing.T) {
	path, _ := writeTestContainer(t)
	patchFile(t, path, func(data []byte) { data[0] = 'X' })

	_, err := Open(path, OpenOptions{})
	if !IsCorrupt(err) {
		t.Fatalf("err = %v, want corrupt container", err)
	}
}

func TestOpenRejectsShortFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "short.dgt")
	if err := os.WriteFile(path, []byte("DGT\x01 truncated"), 0o644); err != nil {
		t.Fatalf("writing short file: %v", err)
	}

	_, err := Open(path, OpenOptions{})
	if !IsCorrupt(err) {
		t.Fatalf("err = %v, want corrupt container", err)
	}
}

func TestOpenRejectsUnsupportedVersion(t *testing.T) {
	path, _ := writeTestContainer(t)
	patchFile(t, path, func(data []byte) {
		binary.LittleEndian.PutUint32(data[4:8], 99)
	})

	_, err := Open(path, OpenOptions{})
	if !IsUnsupportedVersion(err) {
		t.Fatalf("err = %v, want unsupported version", err)
	}
	if IsCorrupt(err) {
		t.Fatalf("unsupported version must not also report corruption: %v", err)
	}
}

func TestOpenRejectsCorruptPayload(t *testing.T) {
	path, _ := writeTestContainer(t)
	patchFile(t, path, func(data []byte) { data[len(data)-1] ^= 0xFF })

	_, err := Open(path, OpenOptions{})
	if !IsIntegrityError(err) {
		t.Fatalf("err = %v, want integrity error", err)
	}
}

func TestOpenRejectsTamperedChecksum(t *testing.T) {
	path, _ := writeTestContainer(t)
	patchFile(t, path, func(data []byte) { data[20] ^= 0xFF })

	_, err := Open(path, OpenOptions{})
	if !IsIntegrityError(err) {
		t.Fatalf("err = %v, want integrity error", err)
	}
}

func TestLegacyZeroChecksum(t *testing.T) {
	path, _ := writeTestContainer(t)
	patchFile(t, path, func(data []byte) {
		for i := 16; i < 48; i++ {
			data[i] = 0
		}
	})

	// Strict mode treats the zero digest like any other mismatch.
	if _, err := Open(path, OpenOptions{}); !IsIntegrityError(err) {
		t.Fatalf("strict err = %v, want integrity error", err)
	}

	// Legacy mode loads the container but warns.
	var logBuf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logBuf, nil))
	archive, err := Open(path, OpenOptions{Integrity: IntegrityLegacy, Logger: logger})
	if err != nil {
		t.Fatalf("legacy Open: %v", err)
	}
	defer archive.Close()

	if got := archive.Payload().EntryCount(); got != 5 {
		t.Errorf("EntryCount() = %d, want 5", got)
	}
	if !strings.Contains(logBuf.String(), "legacy zero checksum") {
		t.Errorf("expected a legacy checksum warning, log output: %q", logBuf.String())
	}
}

func TestLegacyModeRejectsRealMismatch(t *testing.T) {
	path, _ := writeTestContainer(t)
	patchFile(t, path, func(data []byte) { data[len(data)-1] ^= 0xFF })

	// The stored digest is non-zero, so legacy mode must still fail.
	_, err := Open(path, OpenOptions{Integrity: IntegrityLegacy})
	if !IsIntegrityError(err) {
		t.Fatalf("err = %v, want integrity error", err)
	}
}

func TestOpenRejectsGarbageFrame(t *testing.T) {
	// A payload that hashes correctly but is not a compression frame
	// is a deserialization failure, not corruption.
	garbage := []byte("this is not a compression frame")
	header := Header{
		Version:    CurrentVersion,
		BuildTime:  time.Now(),
		Checksum:   SumPayload(garbage),
		DataOffset: HeaderSize,
	}
	buf := EncodeHeader(header)

	path := filepath.Join(t.TempDir(), "garbage.dgt")
	if err := os.WriteFile(path, append(buf[:], garbage...), 0o644); err != nil {
		t.Fatalf("writing garbage container: %v", err)
	}

	_, err := Open(path, OpenOptions{})
	if !IsDeserializationError(err) {
		t.Fatalf("err = %v, want deserialization error", err)
	}
}

func TestOpenRejectsGarbageCBOR(t *testing.T) {
	// Valid frame, invalid CBOR inside.
	frame, err := compress.Compress([]byte{0xFF, 0xFF, 0xFF}, compress.Zstd)
	if err != nil {
		t.Fatalf("Compress: %v", err)
	}
	header := Header{
		Version:    CurrentVersion,
		BuildTime:  time.Now(),
		Checksum:   SumPayload(frame),
		DataOffset: HeaderSize,
	}
	buf := EncodeHeader(header)

	path := filepath.Join(t.TempDir(), "badcbor.dgt")
	if err := os.WriteFile(path, append(buf[:], frame...), 0o644); err != nil {
		t.Fatalf("writing container: %v", err)
	}

	_, err = Open(path, OpenOptions{})
	if !IsDeserializationError(err) {
		t.Fatalf("err = %v, want deserialization error", err)
	}
}

func TestOpenHonorsLargerDataOffset(t *testing.T) {
	// Readers must seek to the header's data offset rather than
	// assume the payload starts right after the header.
	payload := testPayload(t)
	body, err := codec.Marshal(payload)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	frame, err := compress.Compress(body, compress.Zstd)
	if err != nil {
		t.Fatalf("Compress: %v", err)
	}

	const pad = 8
	header := Header{
		Version:    CurrentVersion,
		BuildTime:  time.Now(),
		Checksum:   SumPayload(frame),
		AssetCount: uint32(payload.EntryCount()),
		DataOffset: HeaderSize + pad,
	}
	buf := EncodeHeader(header)

	data := append(buf[:], make([]byte, pad)...)
	data = append(data, frame...)
	path := filepath.Join(t.TempDir(), "padded.dgt")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("writing padded container: %v", err)
	}

	archive, err := Open(path, OpenOptions{Validate: true})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer archive.Close()

	if got := archive.Payload().EntryCount(); got != 5 {
		t.Errorf("EntryCount() = %d, want 5", got)
	}
	if got := archive.CompressedSize(); got != int64(len(frame)) {
		t.Errorf("CompressedSize() = %d, want %d", got, len(frame))
	}
	if got := archive.DecodedSize(); got != int64(len(body)) {
		t.Errorf("DecodedSize() = %d, want %d", got, len(body))
	}
}

func TestOpenRejectsDataOffsetPastEnd(t *testing.T) {
	path, _ := writeTestContainer(t)
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Stat: %v", err)
	}
	patchFile(t, path, func(data []byte) {
		binary.LittleEndian.PutUint32(data[52:56], uint32(info.Size())+10)
	})

	_, err = Open(path, OpenOptions{})
	if !IsCorrupt(err) {
		t.Fatalf("err = %v, want corrupt container", err)
	}
}

func TestOpenRejectsDataOffsetInsideHeader(t *testing.T) {
	path, _ := writeTestContainer(t)
	patchFile(t, path, func(data []byte) {
		binary.LittleEndian.PutUint32(data[52:56], 10)
	})

	_, err := Open(path, OpenOptions{})
	if !IsCorrupt(err) {
		t.Fatalf("err = %v, want corrupt container", err)
	}
}

func TestAssetCountMismatchWarnsButLoads(t *testing.T) {
	path, _ := writeTestContainer(t)

	// The digest covers only the payload, so a header-side count
	// change passes integrity and must surface as a warning.
	patchFile(t, path, func(data []byte) {
		binary.LittleEndian.PutUint32(data[48:52], 9000)
	})

	var logBuf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logBuf, nil))
	archive, err := Open(path, OpenOptions{Validate: true, Logger: logger})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer archive.Close()

	if got := archive.Payload().EntryCount(); got != 5 {
		t.Errorf("EntryCount() = %d, want 5", got)
	}
	if !strings.Contains(logBuf.String(), "asset count mismatch") {
		t.Errorf("expected an asset count warning, log output: %q", logBuf.String())
	}
}

func TestOpenMissingFile(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "nope.dgt"), OpenOptions{})
	if err == nil {
		t.Fatal("expected an error for a missing file")
	}
	// I/O errors are not load failure categories.
	if IsCorrupt(err) || IsIntegrityError(err) || IsDeserializationError(err) {
		t.Fatalf("missing file miscategorized: %v", err)
	}
}

func TestWriteFileCodecs(t *testing.T) {
	for _, c := range []compress.Codec{compress.Zstd, compress.Gzip, compress.LZ4} {
		t.Run(c.String(), func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "assets.dgt")
			if _, err := WriteFile(path, testPayload(t), WriteOptions{Codec: c}); err != nil {
				t.Fatalf("WriteFile: %v", err)
			}

			data, err := os.ReadFile(path)
			if err != nil {
				t.Fatalf("ReadFile: %v", err)
			}
			if detected, ok := compress.Detect(data[HeaderSize:]); !ok || detected != c {
				t.Errorf("payload frame codec = %v (ok=%v), want %v", detected, ok, c)
			}

			archive, err := Open(path, OpenOptions{Validate: true})
			if err != nil {
				t.Fatalf("Open: %v", err)
			}
			defer archive.Close()
			if got := archive.Payload().EntryCount(); got != 5 {
				t.Errorf("EntryCount() = %d, want 5", got)
			}
		})
	}
}

func TestWriteFileLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "assets.dgt")
	if _, err := WriteFile(path, testPayload(t), WriteOptions{}); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	if len(entries) != 1 || entries[0].Name() != "assets.dgt" {
		names := make([]string, 0, len(entries))
		for _, e := range entries {
			names = append(names, e.Name())
		}
		t.Errorf("directory contents = %v, want only assets.dgt", names)
	}
}

func TestArchiveCloseIdempotent(t *testing.T) {
	path, _ := writeTestContainer(t)
	archive, err := Open(path, OpenOptions{})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := archive.Close(); err != nil {
		t.Fatalf("first Close: %v", err)
	}
	if err := archive.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}

	// The decoded payload outlives the mapping.
	if got := archive.Payload().EntryCount(); got != 5 {
		t.Errorf("EntryCount() after Close = %d, want 5", got)
	}
}

func TestDigestFormatParse(t *testing.T) {
	digest := SumPayload([]byte("payload bytes"))
	formatted := FormatDigest(digest)
	if len(formatted) != 64 {
		t.Fatalf("formatted digest is %d chars, want 64", len(formatted))
	}

	parsed, err := ParseDigest(formatted)
	if err != nil {
		t.Fatalf("ParseDigest: %v", err)
	}
	if parsed != digest {
		t.Error("digest did not roundtrip through hex")
	}

	if _, err := ParseDigest("not hex"); err == nil {
		t.Error("expected an error for non-hex input")
	}
	if _, err := ParseDigest("abcd"); err == nil {
		t.Error("expected an error for short input")
	}
}

func TestSumPayloadDomainSeparated(t *testing.T) {
	// The digest must differ from unkeyed BLAKE3 of the same bytes,
	// or the domain key is not being applied.
	data := []byte("identical input")
	if Digest(blake3.Sum256(data)) == SumPayload(data) {
		t.Error("payload digest equals unkeyed BLAKE3; domain key not applied")
	}
	if SumPayload(data) == SumPayload(append(data, 0)) {
		t.Error("digest ignores input length")
	}
	if SumPayload(data) == zeroDigest {
		t.Error("digest of real data is zero")
	}
}

func BenchmarkOpen(b *testing.B) {
	dir := b.TempDir()
	path := filepath.Join(dir, "assets.dgt")

	payload := &registry.Payload{
		SpriteBank: registry.SpriteBank{
			Sprites:  map[string][]byte{},
			Metadata: map[string]registry.CharacterMetadata{},
			Palettes: map[string][]string{"legion_red": {"#8b0000", "#cd5c5c"}},
		},
	}
	grid := registry.SpriteGrid{{"legion_red:0", "legion_red:1"}, {"legion_red:1", ""}}
	blob, err := registry.EncodeBlob(grid, compress.Zstd)
	if err != nil {
		b.Fatalf("EncodeBlob: %v", err)
	}
	for i := 0; i < 256; i++ {
		id := "sprite_" + string(rune('a'+i%26)) + string(rune('a'+(i/26)%26)) + string(rune('a'+i%10))
		payload.SpriteBank.Sprites[id] = blob
		payload.SpriteBank.Metadata[id] = registry.CharacterMetadata{Palette: "legion_red"}
	}
	if _, err := WriteFile(path, payload, WriteOptions{}); err != nil {
		b.Fatalf("WriteFile: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		b.Fatalf("Stat: %v", err)
	}
	b.SetBytes(info.Size())
	b.ReportAllocs()

	for b.Loop() {
		archive, err := Open(path, OpenOptions{})
		if err != nil {
			b.Fatalf("Open: %v", err)
		}
		archive.Close()
	}
}
