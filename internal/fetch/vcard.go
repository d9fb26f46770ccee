package fetch

import (
	"bytes"
	"context"
)

// HostedCard fetches a hosted .vcf and checks that it holds a vCard.
func HostedCard(ctx context.Context, urlStr string, opts *Options) (string, error) {
	res, err := URL(ctx, urlStr, opts)
	if err != nil {
		return "", err
	}

	body := bytes.TrimPrefix(res.Body, []byte("\xef\xbb\xbf"))
	body = bytes.TrimLeft(body, " \t\r\n")
	const begin = "BEGIN:VCARD"
	if len(body) < len(begin) || !bytes.EqualFold(body[:len(begin)], []byte(begin)) {
		return "", &Error{URL: urlStr, Message: "response is not a vCard"}
	}
	return string(body), nil
}
