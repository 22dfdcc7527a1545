package validator

import (
	"errors"
	"regexp"
	"strings"
)

// email形式が不正
var ErrInvalidEmail = errors.New("invalid email")

var emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// 簡易メール形式をチェック
func IsEmail(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" || len(s) > 254 {
		return false
	}
	return emailRe.MatchString(s)
}

func ValidateEmail(s string) error {
	if !IsEmail(s) {
		return ErrInvalidEmail
	}
	return nil
}

// 国コードはISO 3166-1 alpha-2
func IsCountryCode(s string) bool {
	if len(s) != 2 {
		return false
	}
	for _, r := range s {
		if r < 'A' || r > 'Z' {
			return false
		}
	}
	return true
}
