package catalog

import (
	"bytes"
	_ "embed"
	"sync"
)

//go:embed data/mba.toml
var mbaTOML []byte

var (
	defaultOnce    sync.Once
	defaultCatalog *Catalog
)

// Default returns the embedded MBA program catalog.
// The catalog is parsed once; it panics if the embedded document is invalid.
func Default() *Catalog {
	defaultOnce.Do(func() {
		c, err := Parse(bytes.NewReader(mbaTOML), FormatTOML)
		if err != nil {
			panic("catalog: embedded MBA catalog is invalid: " + err.Error())
		}
		defaultCatalog = c
	})
	return defaultCatalog
}
