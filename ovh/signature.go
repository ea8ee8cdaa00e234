package ovh

import (
	"crypto/sha1"
	"encoding/hex"
	"strconv"
	"strings"
)

const signaturePrefix = "$1$"

// Sign computes the request signature expected in the X-Ovh-Signature header.
//
// The signed message is the '+' separated concatenation of
//
//	secret + consumerKey + method + target + body + timestamp
//
// where target is the full request URL including the query string and a nil body
// contributes an empty field. The method is used exactly as given.
func Sign(secret, consumerKey string, timestamp int64, method, target string, body []byte) string {
	msg := strings.Builder{}
	msg.Grow(len(secret) + len(consumerKey) + len(method) + len(target) + len(body) + 25)
	msg.WriteString(secret)
	msg.WriteByte('+')
	msg.WriteString(consumerKey)
	msg.WriteByte('+')
	msg.WriteString(method)
	msg.WriteByte('+')
	msg.WriteString(target)
	msg.WriteByte('+')
	msg.Write(body)
	msg.WriteByte('+')
	msg.WriteString(strconv.FormatInt(timestamp, 10))

	sum := sha1.Sum([]byte(msg.String()))
	return signaturePrefix + hex.EncodeToString(sum[:])
}
