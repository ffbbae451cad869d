package celestia

import (
	"encoding/hex"
	"fmt"
	"strings"
)

// NamespaceSize is the length of a versioned namespace: one version byte and a 28 byte id.
const NamespaceSize = 29

// ParseNamespaces decodes hex namespaces. Ids shorter than the full size are treated as
// version 0 namespaces and left-padded with zeros.
func ParseNamespaces(values []string) ([][]byte, error) {
	namespaces := make([][]byte, 0, len(values))
	for _, v := range values {
		raw, err := hex.DecodeString(strings.TrimPrefix(strings.TrimSpace(v), "0x"))
		if err != nil {
			return nil, fmt.Errorf("decode namespace %q: %w", v, err)
		}
		switch {
		case len(raw) == 0:
			return nil, fmt.Errorf("namespace %q is empty", v)
		case len(raw) > NamespaceSize:
			return nil, fmt.Errorf("namespace %q is longer than %d bytes", v, NamespaceSize)
		case len(raw) < NamespaceSize:
			padded := make([]byte, NamespaceSize)
			copy(padded[NamespaceSize-len(raw):], raw)
			raw = padded
		}
		namespaces = append(namespaces, raw)
	}
	return namespaces, nil
}
