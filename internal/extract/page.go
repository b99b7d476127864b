// Package extract turns a loaded careers page into raw job records without relying
// on any particular markup. Everything that runs inside the page goes through Page.
package extract

import (
	"encoding/json"
	"fmt"
)

// Page is the boundary to code executing inside the document. playwright.Page
// satisfies it, and StaticPage answers the same scripts from fetched HTML.
type Page interface {
	Evaluate(expression string, arg ...interface{}) (interface{}, error)
}

// evaluateInto runs script in the page and decodes its JSON-compatible result into out.
func evaluateInto(page Page, script string, out any, arg ...interface{}) error {
	raw, err := page.Evaluate(script, arg...)
	if err != nil {
		return err
	}
	data, err := json.Marshal(raw)
	if err != nil {
		return fmt.Errorf("encode page result: %w", err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode page result: %w", err)
	}
	return nil
}

// BaseURL returns the URL relative links on the page resolve against.
func BaseURL(page Page) (string, error) {
	var base string
	if err := evaluateInto(page, baseURIScript, &base); err != nil {
		return "", err
	}
	return base, nil
}

// VisibleText returns the rendered text of the document body.
func VisibleText(page Page) (string, error) {
	var text string
	if err := evaluateInto(page, bodyTextScript, &text); err != nil {
		return "", err
	}
	return text, nil
}
