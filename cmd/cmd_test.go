package cmd

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/google/gopacket/pcapgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"firestige.xyz/cipherscope/internal/scan"
	"firestige.xyz/cipherscope/pkg/entropy"
	"firestige.xyz/cipherscope/pkg/pcapfile"
)

// executeCommand runs the root command with a fresh config file and returns stdout.
func executeCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	scanFiles, scanEpsilon, scanMinLength, scanFormat, scanAll = nil, 0, 0, "", false
	entropyWindow, entropyEpsilon = entropy.MaxCalibratedLen, 0
	writeInput, writeOutput, writeAppend, writeSnapLen = "", "", false, 0

	cfgPath := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("cipherscope:\n  log:\n    level: warn\n"), 0644))

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs(append(args, "-c", cfgPath))
	err := rootCmd.Execute()
	return out.String(), err
}

func randomPayload(n int, seed int64) []byte {
	buf := make([]byte, n)
	rand.New(rand.NewSource(seed)).Read(buf)
	return buf
}

func TestScanCommand_JSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "in.pcap")
	f, err := pcapfile.Create(path, 0)
	require.NoError(t, err)
	_, err = f.Write(randomPayload(1024, 1), 1, 0, 0)
	require.NoError(t, err)
	_, err = f.Write(bytes.Repeat([]byte{0}, 1024), 2, 0, 0)
	require.NoError(t, err)
	require.NoError(t, f.Close())

	out, err := executeCommand(t, "scan", "-f", path, "--format", "json", "--all")
	require.NoError(t, err)

	var report scan.Report
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Equal(t, 2, report.Summary.Records)
	assert.Equal(t, 1, report.Summary.Encrypted)
	assert.Equal(t, 1, report.Summary.Plain)
	assert.Len(t, report.Records, 2)
}

func TestScanCommand_MissingFile(t *testing.T) {
	_, err := executeCommand(t, "scan", "-f", filepath.Join(t.TempDir(), "nope.pcap"))
	assert.Error(t, err)
}

func TestWriteCommand_NormalizesByteOrder(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "le.pcap")
	output := filepath.Join(dir, "be.pcap")

	fd, err := os.Create(input)
	require.NoError(t, err)
	w := pcapgo.NewWriter(fd)
	require.NoError(t, w.WriteFileHeader(65535, layers.LinkTypeEthernet))
	for i, n := range []int{60, 200} {
		data := randomPayload(n, int64(i))
		require.NoError(t, w.WritePacket(gopacket.CaptureInfo{
			Timestamp:     time.Unix(int64(1000+i), 5000),
			CaptureLength: n,
			Length:        n,
		}, data))
	}
	require.NoError(t, fd.Close())

	out, err := executeCommand(t, "write", "-i", input, "-o", output, "--snaplen", "128")
	require.NoError(t, err)
	assert.Contains(t, out, "2 records written")

	r, err := pcapfile.Open(output, pcapfile.ModeRead)
	require.NoError(t, err)
	defer r.Close()
	assert.Equal(t, binary.BigEndian, r.ByteOrder())
	assert.Equal(t, uint32(128), r.Header().SnapLen)

	first, err := r.Read()
	require.NoError(t, err)
	assert.Equal(t, uint32(1000), first.TsSec)
	assert.Equal(t, uint32(5), first.TsUsec)
	assert.Len(t, first.Data, 60)

	second, err := r.Read()
	require.NoError(t, err)
	assert.Len(t, second.Data, 128)
	assert.Equal(t, uint32(200), second.OrigLen)
}

func TestExpectedCommand(t *testing.T) {
	out, err := executeCommand(t, "expected", "--from", "256", "--to", "1024")
	require.NoError(t, err)
	assert.Contains(t, out, "7.172755")
	assert.Contains(t, out, "7.808035")
}

func TestEntropyCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "zeros.bin")
	require.NoError(t, os.WriteFile(path, bytes.Repeat([]byte{0}, 8192), 0644))

	out, err := executeCommand(t, "entropy", "--window", "4096", path)
	require.NoError(t, err)
	assert.Contains(t, out, "4096")
	assert.Contains(t, out, "0.0000")
	assert.NotContains(t, out, "encrypted")
}

func TestEntropyCommand_DefaultWindowStaysCalibrated(t *testing.T) {
	path := filepath.Join(t.TempDir(), "random.bin")
	require.NoError(t, os.WriteFile(path, randomPayload(3*entropy.MaxCalibratedLen, 7), 0644))

	out, err := executeCommand(t, "entropy", path)
	require.NoError(t, err)
	assert.Equal(t, 3, strings.Count(out, "encrypted"))
	assert.NotContains(t, out, "uncalibrated")

	out, err = executeCommand(t, "entropy", "--window", "0", path)
	require.NoError(t, err)
	assert.Contains(t, out, "(uncalibrated)")
}

func TestWriteCommand_AppendKeepsFileSnapLen(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "in.pcap")
	output := filepath.Join(dir, "out.pcap")

	fd, err := os.Create(input)
	require.NoError(t, err)
	w := pcapgo.NewWriter(fd)
	require.NoError(t, w.WriteFileHeader(65535, layers.LinkTypeEthernet))
	require.NoError(t, w.WritePacket(gopacket.CaptureInfo{
		Timestamp:     time.Unix(3000, 0),
		CaptureLength: 200,
		Length:        200,
	}, randomPayload(200, 3)))
	require.NoError(t, fd.Close())

	existing, err := pcapfile.Create(output, 64)
	require.NoError(t, err)
	require.NoError(t, existing.Close())

	_, err = executeCommand(t, "write", "-i", input, "-o", output, "--append")
	require.NoError(t, err)

	r, err := pcapfile.Open(output, pcapfile.ModeRead)
	require.NoError(t, err)
	defer r.Close()
	assert.Equal(t, uint32(64), r.Header().SnapLen)
	rec, err := r.Read()
	require.NoError(t, err)
	assert.Len(t, rec.Data, 64)
	assert.Equal(t, uint32(200), rec.OrigLen)
}

func TestValidateCommand(t *testing.T) {
	out, err := executeCommand(t, "validate")
	require.NoError(t, err)
	assert.Contains(t, out, "VALID: epsilon 0.500")
}

func TestWindows(t *testing.T) {
	assert.Equal(t, [][2]int{{0, 10}}, windows(10, 0))
	assert.Equal(t, [][2]int{{0, 10}}, windows(10, 10))
	assert.Equal(t, [][2]int{{0, 4}, {4, 8}, {8, 10}}, windows(10, 4))
}

func TestSampleLengths(t *testing.T) {
	got, err := sampleLengths(32, 256, 2, true)
	require.NoError(t, err)
	assert.Equal(t, []int{32, 64, 128, 256}, got)

	got, err = sampleLengths(10, 30, 10, false)
	require.NoError(t, err)
	assert.Equal(t, []int{10, 20, 30}, got)

	_, err = sampleLengths(0, 10, 1, false)
	assert.Error(t, err)
	_, err = sampleLengths(1, 10, 1, true)
	assert.Error(t, err)
}
