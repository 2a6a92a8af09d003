package horoscope

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSign(t *testing.T) {
	sign, err := ParseSign("leo")
	require.NoError(t, err)
	assert.Equal(t, Leo, sign)

	sign, err = ParseSign(" Sagittarius ")
	require.NoError(t, err)
	assert.Equal(t, Sagittarius, sign)

	_, err = ParseSign("Ophiuchus")
	assert.ErrorIs(t, err, ErrUnknownSign)
	_, err = ParseSign("")
	assert.ErrorIs(t, err, ErrUnknownSign)
}

func TestDefaultBook(t *testing.T) {
	book := DefaultBook()
	for _, s := range Signs {
		sign, text, err := book.Predict(string(s))
		require.NoError(t, err)
		assert.Equal(t, s, sign)
		assert.NotEmpty(t, text)
	}
	_, text, err := book.Predict("Cancer")
	require.NoError(t, err)
	assert.Equal(t, "Emotions may run high today. Don't be afraid to lean on loved ones for support and guidance.", text)

	_, _, err = book.Predict("Dragon")
	assert.ErrorIs(t, err, ErrUnknownSign)
}

func TestNewBookValidation(t *testing.T) {
	full := func() map[string]string {
		raw := make(map[string]string)
		for _, s := range Signs {
			raw[string(s)] = "text for " + string(s)
		}
		return raw
	}

	_, err := NewBook(full())
	assert.NoError(t, err)

	missing := full()
	delete(missing, "Pisces")
	_, err = NewBook(missing)
	assert.EqualError(t, err, "horoscope: missing sign Pisces")

	unknown := full()
	unknown["Ophiuchus"] = "text"
	_, err = NewBook(unknown)
	assert.EqualError(t, err, "horoscope: unknown sign Ophiuchus")

	duplicate := full()
	duplicate["aries"] = "again"
	_, err = NewBook(duplicate)
	assert.EqualError(t, err, "horoscope: duplicate sign Aries")

	for i := 0; i < 20; i++ {
		_, err = NewBook(duplicate)
		assert.EqualError(t, err, "horoscope: duplicate sign Aries")
	}

	empty := full()
	empty["Leo"] = " "
	_, err = NewBook(empty)
	assert.Error(t, err)
}
