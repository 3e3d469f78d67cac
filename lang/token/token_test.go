package token

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTokenString(t *testing.T) {
	for tok := Token(0); tok < maxToken; tok++ {
		if tok.String() == "" {
			t.Errorf("missing string representation of token %d", tok)
		}
	}
}

func TestTokenGoStringQuotesOperatorsOnly(t *testing.T) {
	require.Equal(t, "'+'", ADD.GoString())
	require.Equal(t, "'~'", NOT.GoString())
	require.Equal(t, "virtual", VIRTUAL.GoString())
	require.Equal(t, "illegal token", ILLEGAL.GoString())
}

func TestIsClassifier(t *testing.T) {
	for tok := Token(0); tok < maxToken; tok++ {
		expect := tok >= PUBLIC && tok <= OVERRIDE
		require.Equal(t, expect, tok.IsClassifier(), "token %v", tok)
	}
}

func TestClassifiersHas(t *testing.T) {
	c := Classifiers{PUBLIC, VIRTUAL}
	require.True(t, c.Has(PUBLIC))
	require.True(t, c.Has(VIRTUAL))
	require.False(t, c.Has(STATIC))
	require.False(t, Classifiers(nil).Has(PUBLIC))
}
