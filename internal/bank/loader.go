package bank

import (
	"context"
	_ "embed"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"go.uber.org/multierr"
)

//go:embed fallback_bank.json
var fallbackBankJSON []byte

const (
	SourceBuiltin = "builtin"

	// EnvBankFile names an extra bank file tried before any configured source.
	EnvBankFile = "ETHEREA_BANK_FILE"

	defaultURLTimeout = 5 * time.Second
	maxBankBytes      = 1 << 20
)

type Loader interface {
	Load(ctx context.Context) (*Bank, error)
}

type LoaderFunc func(ctx context.Context) (*Bank, error)

func (f LoaderFunc) Load(ctx context.Context) (*Bank, error) {
	return f(ctx)
}

// Builtin returns the embedded bank. It panics only if the embedded document
// is broken, which the package tests rule out.
func Builtin() *Bank {
	b, err := Parse(fallbackBankJSON, FormatJSON, SourceBuiltin)
	if err != nil {
		panic(fmt.Sprintf("embedded intent bank is invalid: %v", err))
	}
	return b
}

func FileLoader(path string) Loader {
	return LoaderFunc(func(ctx context.Context) (*Bank, error) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		path := strings.TrimSpace(path)
		if path == "" {
			return nil, fmt.Errorf("bank file path is empty")
		}
		payload, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("could not read bank file: %w", err)
		}
		return Parse(payload, FormatForPath(path), "file:"+path)
	})
}

// URLLoader fetches a JSON bank over HTTP. A nil client gets a 5s timeout.
func URLLoader(url string, client *http.Client) Loader {
	if client == nil {
		client = &http.Client{Timeout: defaultURLTimeout}
	}
	return LoaderFunc(func(ctx context.Context) (*Bank, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, fmt.Errorf("could not build bank request: %w", err)
		}
		req.Header.Set("Accept", "application/json")
		resp, err := client.Do(req)
		if err != nil {
			return nil, fmt.Errorf("could not fetch bank: %w", err)
		}
		defer resp.Body.Close()
		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			return nil, fmt.Errorf("bank fetch returned status %d", resp.StatusCode)
		}
		payload, err := io.ReadAll(io.LimitReader(resp.Body, maxBankBytes))
		if err != nil {
			return nil, fmt.Errorf("could not read bank response: %w", err)
		}
		format := FormatJSON
		if strings.Contains(resp.Header.Get("Content-Type"), "yaml") {
			format = FormatYAML
		}
		return Parse(payload, format, "url:"+url)
	})
}

// ChainLoader returns the first bank any loader produces, in order.
func ChainLoader(loaders ...Loader) Loader {
	return LoaderFunc(func(ctx context.Context) (*Bank, error) {
		var errs error
		for _, loader := range loaders {
			if loader == nil {
				continue
			}
			b, err := loader.Load(ctx)
			if err == nil && b != nil {
				return b, nil
			}
			if err == nil {
				err = fmt.Errorf("loader returned no bank")
			}
			errs = multierr.Append(errs, err)
		}
		if errs == nil {
			errs = fmt.Errorf("no bank sources configured")
		}
		return nil, errs
	})
}

// Sources describes where a bank may come from, tried in field order.
type Sources struct {
	File string
	URL  string
}

// LoaderFor builds the chain for the configured sources plus the
// ETHEREA_BANK_FILE override. It returns nil when nothing is configured.
func LoaderFor(src Sources) Loader {
	var loaders []Loader
	if override := strings.TrimSpace(os.Getenv(EnvBankFile)); override != "" {
		loaders = append(loaders, FileLoader(override))
	}
	if strings.TrimSpace(src.File) != "" {
		loaders = append(loaders, FileLoader(src.File))
	}
	if strings.TrimSpace(src.URL) != "" {
		loaders = append(loaders, URLLoader(strings.TrimSpace(src.URL), nil))
	}
	if len(loaders) == 0 {
		return nil
	}
	return ChainLoader(loaders...)
}
