// Package internal holds helpers shared by the packages in this module.
package internal

import "net/url"

// SubURL resolves name relative to base.
func SubURL(base *url.URL, name string) (*url.URL, error) {
	rel, err := url.Parse(name)
	if err != nil {
		return nil, err
	}

	return base.ResolveReference(rel), nil
}
