package morph

import (
	"fmt"

	"github.com/ikawaha/kagome-dict/ipa"
	"github.com/ikawaha/kagome/v2/tokenizer"

	"github.com/kotonoha/talktrend/pkg/talktrend/internalerr"
)

// KagomeEngine adapts the kagome tokenizer with the IPA dictionary to the
// Engine interface. The underlying tokenizer is read-only after
// construction and safe for concurrent use.
type KagomeEngine struct {
	t *tokenizer.Tokenizer
}

// NewKagomeEngine builds the kagome tokenizer. The dictionary is
// expensive to load; construct once at process start and inject the
// instance. Failure is internalerr.ErrEngineInit and fatal.
func NewKagomeEngine() (*KagomeEngine, error) {
	t, err := tokenizer.New(ipa.Dict(), tokenizer.OmitBosEos())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", internalerr.ErrEngineInit, err)
	}
	return &KagomeEngine{t: t}, nil
}

// Analyze returns the ordered morpheme stream for text.
func (e *KagomeEngine) Analyze(text string) ([]Morpheme, error) {
	toks := e.t.Tokenize(text)
	out := make([]Morpheme, 0, len(toks))
	for _, tk := range toks {
		out = append(out, Morpheme{
			Surface:  tk.Surface,
			Features: tk.Features(),
		})
	}
	return out, nil
}
