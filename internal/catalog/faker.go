// Package catalog exposes the vocabulary around a masking run: the synthetic
// value providers available for replacement-style anonymization, and the
// distinct values a field actually holds in the source store.
package catalog

import (
	"fmt"
	"sort"

	"github.com/brianvoe/gofakeit/v7"
)

// providers maps a provider name to a synthetic value generator. Names follow
// the field vocabulary operators already use in job configs.
var providers = map[string]func(*gofakeit.Faker) string{
	"name":       func(f *gofakeit.Faker) string { return f.Name() },
	"first_name": func(f *gofakeit.Faker) string { return f.FirstName() },
	"last_name":  func(f *gofakeit.Faker) string { return f.LastName() },
	"email":      func(f *gofakeit.Faker) string { return f.Email() },
	"user_name":  func(f *gofakeit.Faker) string { return f.Username() },
	"company":    func(f *gofakeit.Faker) string { return f.Company() },
	"ipv4":       func(f *gofakeit.Faker) string { return f.IPv4Address() },
	"ipv6":       func(f *gofakeit.Faker) string { return f.IPv6Address() },
	"mac":        func(f *gofakeit.Faker) string { return f.MacAddress() },
	"url":        func(f *gofakeit.Faker) string { return f.URL() },
	"domain":     func(f *gofakeit.Faker) string { return f.DomainName() },
	"uuid":       func(f *gofakeit.Faker) string { return f.UUID() },
	"city":       func(f *gofakeit.Faker) string { return f.City() },
	"country":    func(f *gofakeit.Faker) string { return f.Country() },
	"phone":      func(f *gofakeit.Faker) string { return f.Phone() },
	"user_agent": func(f *gofakeit.Faker) string { return f.UserAgent() },
	"word":       func(f *gofakeit.Faker) string { return f.Word() },
	"sentence":   func(f *gofakeit.Faker) string { return f.Sentence(8) },
}

// Faker generates example values per provider. A zero seed gives a random
// stream; a fixed seed makes the output reproducible.
type Faker struct {
	gen *gofakeit.Faker
}

func NewFaker(seed uint64) *Faker {
	return &Faker{gen: gofakeit.New(seed)}
}

// Providers lists the known provider names in stable order.
func Providers() []string {
	names := make([]string, 0, len(providers))
	for name := range providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Examples returns count synthetic values for the named provider.
func (f *Faker) Examples(provider string, count int) ([]string, error) {
	gen, ok := providers[provider]
	if !ok {
		return nil, fmt.Errorf("unknown provider: %s", provider)
	}
	if count < 1 {
		count = 1
	}

	values := make([]string, 0, count)
	for i := 0; i < count; i++ {
		values = append(values, gen(f.gen))
	}
	return values, nil
}
