package document

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// ChecksumPrefix starts the checksum line of generated files.
const ChecksumPrefix = "// gqlselect-checksum: "

// GeneratorOptions are the code generation settings that take part in the
// schema checksum.
type GeneratorOptions struct {
	Namespace       string            `json:"namespace"`
	ClientName      string            `json:"clientName"`
	Visibility      string            `json:"visibility"`
	ScalarOverrides map[string]string `json:"scalarOverrides"`
}

// SchemaChecksum combines the hash of the raw schema source with the hash
// of the canonical encoding of opts. It decides whether generated output
// is stale and is never used at request time.
func SchemaChecksum(schemaSource []byte, opts GeneratorOptions) (string, error) {
	// encoding/json writes struct fields in declaration order and map keys
	// sorted, so equal options always encode identically.
	encoded, err := json.Marshal(opts)
	if err != nil {
		return "", fmt.Errorf("encode generator options: %w", err)
	}
	return sha256Hex([]byte(sha256Hex(schemaSource) + sha256Hex(encoded))), nil
}

// ChecksumLine renders the leading comment line carrying sum.
func ChecksumLine(sum string) string {
	return ChecksumPrefix + sum
}

// ReadChecksum extracts the checksum from the first line of generated
// output. ok is false when the first line is not a checksum line.
func ReadChecksum(generated []byte) (sum string, ok bool) {
	sc := bufio.NewScanner(bytes.NewReader(generated))
	if !sc.Scan() {
		return "", false
	}
	line := strings.TrimSpace(sc.Text())
	if !strings.HasPrefix(line, ChecksumPrefix) {
		return "", false
	}
	sum = strings.TrimSpace(strings.TrimPrefix(line, ChecksumPrefix))
	return sum, sum != ""
}

// UpToDate reports whether generated carries the checksum of the given
// schema and options, in which case regeneration can be skipped.
func UpToDate(generated, schemaSource []byte, opts GeneratorOptions) (bool, error) {
	have, ok := ReadChecksum(generated)
	if !ok {
		return false, nil
	}
	want, err := SchemaChecksum(schemaSource, opts)
	if err != nil {
		return false, err
	}
	return have == want, nil
}
