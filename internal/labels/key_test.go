package labels

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDecodeKey(t *testing.T) {
	tests := []struct {
		key  string
		want string
	}{
		{key: "plain.jpg", want: "plain.jpg"},
		{key: "summer+trip/beach%281%29.PNG", want: "summer trip/beach(1).PNG"},
		{key: "a%2Bb.png", want: "a+b.png"},
		{key: "caf%C3%A9.jpg", want: "café.jpg"},
		{key: "sale-50%off.jpg", want: "sale-50%off.jpg"},
		{key: "bad%zz.jpg", want: "bad%zz.jpg"},
		{key: "trailing%4", want: "trailing%4"},
		{key: "trailing%", want: "trailing%"},
		{key: "100%25+pure.jpeg", want: "100% pure.jpeg"},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			assert.Equal(t, tt.want, DecodeKey(tt.key))
		})
	}
}
