package horoscope

import (
	"errors"
	"sort"
	"strings"
)

var ErrUnknownSign = errors.New("unknown sign")

type Sign string

const (
	Aries       Sign = "Aries"
	Taurus      Sign = "Taurus"
	Gemini      Sign = "Gemini"
	Cancer      Sign = "Cancer"
	Leo         Sign = "Leo"
	Virgo       Sign = "Virgo"
	Libra       Sign = "Libra"
	Scorpio     Sign = "Scorpio"
	Sagittarius Sign = "Sagittarius"
	Capricorn   Sign = "Capricorn"
	Aquarius    Sign = "Aquarius"
	Pisces      Sign = "Pisces"
)

var Signs = [...]Sign{Aries, Taurus, Gemini, Cancer, Leo, Virgo, Libra, Scorpio, Sagittarius, Capricorn, Aquarius, Pisces}

// ParseSign matches a sign name regardless of case.
func ParseSign(name string) (Sign, error) {
	name = strings.TrimSpace(name)
	for _, s := range Signs {
		if strings.EqualFold(name, string(s)) {
			return s, nil
		}
	}
	return "", ErrUnknownSign
}

var predictions = map[string]string{
	"Aries":       "Today, you will feel a burst of energy and enthusiasm. It's a great day to start new projects and pursue your passions.",
	"Taurus":      "You may find yourself in a reflective mood today. Take some time to think about your long-term goals and how to achieve them.",
	"Gemini":      "Communication will be key for you today. Express your thoughts and feelings clearly, and you'll find that people are receptive.",
	"Cancer":      "Emotions may run high today. Don't be afraid to lean on loved ones for support and guidance.",
	"Leo":         "You're feeling confident and charismatic today. Use your charm to your advantage in both personal and professional situations.",
	"Virgo":       "Focus on your health and well-being today. A little self-care can go a long way in improving your overall quality of life.",
	"Libra":       "Your social life is thriving today. Enjoy some quality time with friends and maybe even meet some new people.",
	"Scorpio":     "You're feeling particularly determined and resourceful today. Use these qualities to overcome any challenges that come your way.",
	"Sagittarius": "Adventure awaits you today. Whether it's a spontaneous trip or a new hobby, embrace the excitement.",
	"Capricorn":   "Your work ethic is impressive today. Focus on your career goals and you'll make significant progress.",
	"Aquarius":    "Your creative side is shining today. Use your imagination to solve problems and come up with innovative ideas.",
	"Pisces":      "You may feel a bit dreamy today, but that's okay. Allow yourself to daydream and tap into your intuition.",
}

// Book maps every sign to exactly one prediction.
type Book struct {
	predictions map[Sign]string
}

// NewBook rejects unknown keys, duplicates after case folding and missing
// signs, so a lookup on a built Book cannot come back empty.
func NewBook(raw map[string]string) (*Book, error) {
	keys := make([]string, 0, len(raw))
	for key := range raw {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	book := &Book{predictions: make(map[Sign]string, len(Signs))}
	for _, key := range keys {
		text := raw[key]
		sign, err := ParseSign(key)
		if err != nil {
			return nil, errors.New("horoscope: unknown sign " + key)
		}
		if _, ok := book.predictions[sign]; ok {
			return nil, errors.New("horoscope: duplicate sign " + string(sign))
		}
		if strings.TrimSpace(text) == "" {
			return nil, errors.New("horoscope: empty prediction for " + key)
		}
		book.predictions[sign] = text
	}
	for _, sign := range Signs {
		if _, ok := book.predictions[sign]; !ok {
			return nil, errors.New("horoscope: missing sign " + string(sign))
		}
	}
	return book, nil
}

func DefaultBook() *Book {
	book, err := NewBook(predictions)
	if err != nil {
		panic(err)
	}
	return book
}

func (book *Book) Predict(name string) (Sign, string, error) {
	sign, err := ParseSign(name)
	if err != nil {
		return "", "", err
	}
	return sign, book.predictions[sign], nil
}
