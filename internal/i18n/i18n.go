// Package i18n хранит тексты бота на русском и английском.
package i18n

import (
	"fmt"
	"strings"
)

// Default язык, на который откатываются неизвестные коды и ключи.
const Default = "ru"

// Params подстановки вида {name} в тексте.
type Params map[string]interface{}

type Language struct {
	Code  string
	Label string
}

// Languages в порядке кнопок выбора языка.
var Languages = []Language{
	{Code: "ru", Label: "🇷🇺 Русский"},
	{Code: "en", Label: "🇬🇧 English"},
}

// FAQCount число вопросов с отдельным ответом (faq_q_N / faq_a_N).
const FAQCount = 9

// T возвращает текст по ключу. Нет ключа в языке - берётся русский, нет и там - сам ключ.
func T(lang, key string, params ...Params) string {
	text, ok := messages[Normalize(lang)][key]
	if !ok {
		text, ok = messages[Default][key]
	}
	if !ok {
		text = key
	}

	for _, p := range params {
		for name, value := range p {
			text = strings.ReplaceAll(text, "{"+name+"}", fmt.Sprint(value))
		}
	}
	return text
}

func IsValid(lang string) bool {
	_, ok := messages[lang]
	return ok
}

// Normalize приводит код языка к поддерживаемому.
func Normalize(lang string) string {
	lang = strings.ToLower(strings.TrimSpace(lang))
	if IsValid(lang) {
		return lang
	}
	return Default
}

// Has сообщает, есть ли ключ в таблице языка без учёта отката.
func Has(lang, key string) bool {
	_, ok := messages[lang][key]
	return ok
}
