package flashcard

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	enTranslations "github.com/go-playground/validator/v10/translations/en"
)

var (
	ErrInvalidCard = errors.New("invalid card")
	ErrInvalidDeck = errors.New("invalid deck")
)

var (
	validateOnce sync.Once
	validate     *validator.Validate
	translator   ut.Translator
	validateErr  error
)

func newValidator() (*validator.Validate, ut.Translator, error) {
	v := validator.New()

	enLocale := en.New()
	uni := ut.New(enLocale, enLocale)
	trans, _ := uni.GetTranslator("en")
	if err := enTranslations.RegisterDefaultTranslations(v, trans); err != nil {
		return nil, nil, fmt.Errorf("register default translations: %w", err)
	}
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("yaml"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v, trans, nil
}

// ValidateCard checks the user-editable fields of a card.
func ValidateCard(card Card) error {
	return validateStruct(card, ErrInvalidCard)
}

// ValidateDeck checks the user-editable fields of a deck.
func ValidateDeck(deck Deck) error {
	return validateStruct(deck, ErrInvalidDeck)
}

func validateStruct(s interface{}, sentinel error) error {
	validateOnce.Do(func() {
		validate, translator, validateErr = newValidator()
	})
	if validateErr != nil {
		return fmt.Errorf("create validator: %w", validateErr)
	}

	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return fmt.Errorf("%w: %v", sentinel, err)
	}
	msgs := make([]string, 0, len(validationErrors))
	for _, e := range validationErrors {
		msgs = append(msgs, e.Translate(translator))
	}
	return fmt.Errorf("%w: %s", sentinel, strings.Join(msgs, ", "))
}
