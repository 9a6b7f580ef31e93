package game

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRankValues(t *testing.T) {
	tests := []struct {
		rank   Rank
		value  int
		symbol string
	}{
		{Ace, 1, "A"},
		{Two, 2, "2"},
		{Nine, 9, "9"},
		{Ten, 10, "10"},
		{Jack, 10, "J"},
		{Queen, 10, "Q"},
		{King, 10, "K"},
	}

	for _, tt := range tests {
		t.Run(tt.rank.String(), func(t *testing.T) {
			assert.Equal(t, tt.value, tt.rank.Value())
			assert.Equal(t, tt.symbol, tt.rank.Symbol())
		})
	}

	assert.True(t, Ace.IsAce())
	assert.True(t, Queen.IsFace())
	assert.False(t, Ten.IsFace())
	assert.False(t, Rank(0).Valid())
	assert.False(t, Rank(14).Valid())
}

func TestSuitColours(t *testing.T) {
	assert.True(t, Hearts.IsRed())
	assert.True(t, Diamonds.IsRed())
	assert.True(t, Clubs.IsBlack())
	assert.True(t, Spades.IsBlack())
	assert.False(t, Spades.IsRed())
	assert.Equal(t, "♣", Clubs.Symbol())
	assert.False(t, Suit(9).IsBlack())
}

func TestCardDisplay(t *testing.T) {
	c := Card{Rank: Queen, Suit: Spades}
	assert.Equal(t, "Q♠", c.Symbol())
	assert.Equal(t, "Q♠", c.String())
	assert.Equal(t, "Queen of Spades", c.DisplayName())
	assert.Equal(t, 10, c.Value())
	assert.True(t, c.IsFace())
}

func TestNewCard(t *testing.T) {
	c, err := NewCard(Ten, Hearts)
	require.NoError(t, err)
	assert.Equal(t, Card{Rank: Ten, Suit: Hearts}, c)

	_, err = NewCard(Rank(0), Hearts)
	require.ErrorIs(t, err, ErrInvalidState)

	_, err = NewCard(Ace, Suit(7))
	require.ErrorIs(t, err, ErrInvalidState)
}

func TestParseCard(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Card
		wantErr bool
	}{
		{"ten of hearts glyph", "10♥", Card{Rank: Ten, Suit: Hearts}, false},
		{"ten of hearts letter", "10h", Card{Rank: Ten, Suit: Hearts}, false},
		{"king of diamonds upper", "KD", Card{Rank: King, Suit: Diamonds}, false},
		{"ace of spades glyph", "A♠", Card{Rank: Ace, Suit: Spades}, false},
		{"ace lower case rank", "as", Card{Rank: Ace, Suit: Spades}, false},
		{"two of clubs", "2♣", Card{Rank: Two, Suit: Clubs}, false},
		{"empty", "", Card{}, true},
		{"too short", "A", Card{}, true},
		{"bad suit", "10X", Card{}, true},
		{"bad rank", "11S", Card{}, true},
		{"glyph only", "♠", Card{}, true},
		{"leading space", " AS", Card{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseCard(tt.input)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrInvalidState)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestCardJSON(t *testing.T) {
	data, err := json.Marshal([]Card{{Rank: Ten, Suit: Hearts}, {Rank: Ace, Suit: Clubs}})
	require.NoError(t, err)
	assert.JSONEq(t, `["10♥","A♣"]`, string(data))

	var back []Card
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, MustParseCards("10♥", "A♣"), back)

	_, err = json.Marshal(Card{})
	require.Error(t, err)

	var c Card
	require.Error(t, json.Unmarshal([]byte(`"ZZ"`), &c))
}

func TestMustParseCardsPanics(t *testing.T) {
	assert.Panics(t, func() { MustParseCards("K♥", "nope") })
}
