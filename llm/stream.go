package llm

import (
	"errors"
	"iter"
)

// ErrIncompleteStream is returned by Collect when a stream ends without a
// final unit.
var ErrIncompleteStream = errors.New("stream ended without a final output")

// Collect drains seq and returns the final generated text together with
// every unit received. Units delivered before an error are still returned.
func Collect(seq iter.Seq2[StreamOutput, error]) (string, []StreamOutput, error) {
	var outs []StreamOutput
	for out, err := range seq {
		if err != nil {
			return "", outs, err
		}
		outs = append(outs, out)
		if out.Final() {
			if out.GeneratedText != nil {
				return *out.GeneratedText, outs, nil
			}
			return out.Token.Text, outs, nil
		}
	}
	return "", outs, ErrIncompleteStream
}

// TextOutput builds a non-final unit carrying text.
func TextOutput(id int, text string) StreamOutput {
	return StreamOutput{Token: Token{ID: id, Text: text}}
}

// FinalOutput builds the terminal unit carrying the aggregated text.
func FinalOutput(id int, generated string) StreamOutput {
	return StreamOutput{
		Token:         Token{ID: id, Text: generated, Special: true},
		GeneratedText: &generated,
	}
}
