package tokens

import (
	"fmt"
	"sync"

	"github.com/pkoukk/tiktoken-go"
	tiktoken_loader "github.com/pkoukk/tiktoken-go-loader"
)

// fallbackEncoding is used for models tiktoken does not know about.
const fallbackEncoding = "cl100k_base"

var loaderOnce sync.Once

// TiktokenEncoder tokenizes with the BPE vocabulary of an OpenAI model.
type TiktokenEncoder struct {
	encoding *tiktoken.Tiktoken
}

// NewTiktokenEncoder loads the vocabulary for model. The vocabularies are
// embedded, so no network access is needed.
func NewTiktokenEncoder(model string) (*TiktokenEncoder, error) {
	loaderOnce.Do(func() {
		tiktoken.SetBpeLoader(tiktoken_loader.NewOfflineLoader())
	})

	encoding, err := tiktoken.EncodingForModel(model)
	if err != nil {
		encoding, err = tiktoken.GetEncoding(fallbackEncoding)
		if err != nil {
			return nil, fmt.Errorf("failed to load %s encoding: %w", fallbackEncoding, err)
		}
	}
	return &TiktokenEncoder{encoding: encoding}, nil
}

// Tokenize returns the token ids of text.
func (e *TiktokenEncoder) Tokenize(text string) []int {
	if text == "" {
		return nil
	}
	return e.encoding.Encode(text, nil, nil)
}
