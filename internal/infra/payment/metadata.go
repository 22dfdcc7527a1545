package payment

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"
)

// Stripeのmetadataは1値500文字まで。カートJSONを分割して入れる。
const (
	metadataValueLimit = 500
	maxCartParts       = 40 // keyは全部で50まで
	cartPartsKey       = "cart_items_parts"
	cartPartPrefix     = "cart_items_"
)

var ErrCartTooLarge = errors.New("cart does not fit in checkout metadata")

func EncodeCart(items []CartItem) (map[string]string, error) {
	b, err := json.Marshal(items)
	if err != nil {
		return nil, err
	}
	s := string(b)

	md := map[string]string{}
	n := 0
	for len(s) > 0 {
		end := metadataValueLimit
		if end >= len(s) {
			end = len(s)
		} else {
			//マルチバイト文字の途中で切らない
			for end > 0 && !utf8.RuneStart(s[end]) {
				end--
			}
		}
		md[cartPartPrefix+strconv.Itoa(n)] = s[:end]
		s = s[end:]
		n++
	}
	if n > maxCartParts {
		return nil, ErrCartTooLarge
	}
	md[cartPartsKey] = strconv.Itoa(n)
	return md, nil
}

func DecodeCart(md map[string]string) ([]CartItem, error) {
	n, err := strconv.Atoi(md[cartPartsKey])
	if err != nil || n <= 0 {
		return nil, fmt.Errorf("cart metadata missing")
	}

	var sb strings.Builder
	for i := 0; i < n; i++ {
		part, ok := md[cartPartPrefix+strconv.Itoa(i)]
		if !ok {
			return nil, fmt.Errorf("cart metadata part %d missing", i)
		}
		sb.WriteString(part)
	}

	var items []CartItem
	if err := json.Unmarshal([]byte(sb.String()), &items); err != nil {
		return nil, fmt.Errorf("cart metadata: %w", err)
	}
	return items, nil
}
