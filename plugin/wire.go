package plugin

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"
)

// cborEncMode uses canonical encoding so catalog bytes are deterministic.
var cborEncMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("plugin: failed to create CBOR enc mode: %v", err))
	}
	cborEncMode = em
}

// Catalog is what a plugin reports about itself during the handshake: the
// Box types it provides and their wire method tables.
type Catalog struct {
	Library  string            `cbor:"library"`
	BoxTypes []BoxTypeInfo     `cbor:"box_types"`
	Meta     map[string]string `cbor:"meta,omitempty"`
}

// BoxTypeInfo describes one plugin-provided Box type.
type BoxTypeInfo struct {
	Name    string      `cbor:"name"`
	TypeID  uint32      `cbor:"type_id"`
	Methods []MethodSig `cbor:"methods"`
}

// MethodSig is the wire signature of one plugin method.
type MethodSig struct {
	Name     string `cbor:"name"`
	MethodID uint32 `cbor:"method_id"`
	Arity    int    `cbor:"arity"`
}

// MarshalCatalog serializes a Catalog to canonical CBOR bytes.
func MarshalCatalog(c *Catalog) ([]byte, error) {
	return cborEncMode.Marshal(c)
}

// UnmarshalCatalog deserializes a Catalog from CBOR bytes.
func UnmarshalCatalog(data []byte) (*Catalog, error) {
	var c Catalog
	if err := cbor.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("plugin: unmarshal catalog: %w", err)
	}
	return &c, nil
}
