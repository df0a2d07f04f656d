package project

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/scontainr/quotecenter/internal/catalog"
)

// LineKey identifies a (size, model, finish) combination for the price and
// cost override maps. The persisted form is the display string
// "20-S1-Plegable"; everything in memory works with the struct.
type LineKey struct {
	Size   catalog.Size
	Model  string
	Finish catalog.Finish
}

// String renders the persisted key form.
func (k LineKey) String() string {
	return fmt.Sprintf("%d-%s-%s", int(k.Size), k.Model, string(k.Finish))
}

// ParseLineKey parses the persisted key form. The finish segment may itself
// contain dashes, so only the first two separators are structural.
func ParseLineKey(s string) (LineKey, error) {
	parts := strings.SplitN(s, "-", 3)
	if len(parts) != 3 {
		return LineKey{}, fmt.Errorf("line key %q: want size-model-finish", s)
	}
	size, err := strconv.Atoi(parts[0])
	if err != nil || !catalog.ValidSize(catalog.Size(size)) {
		return LineKey{}, fmt.Errorf("line key %q: bad size %q", s, parts[0])
	}
	if parts[1] == "" || parts[2] == "" {
		return LineKey{}, fmt.Errorf("line key %q: empty segment", s)
	}
	return LineKey{
		Size:   catalog.Size(size),
		Model:  parts[1],
		Finish: catalog.Finish(parts[2]),
	}, nil
}
