package mongodb

import "strings"

// redactedPassword is the placeholder used when serializing passwords.
const redactedPassword = "[REDACTED]"

// RedactURI replaces the password of a MongoDB connection string with a
// placeholder. Strings without credentials are returned unchanged.
//
// net/url is not used because seed lists ("mongodb://a:1,b:2/") are not
// valid URL hosts.
func RedactURI(uri string) string {
	schemeEnd := strings.Index(uri, "://")
	if schemeEnd < 0 {
		return uri
	}

	rest := uri[schemeEnd+3:]
	authorityEnd := strings.IndexAny(rest, "/?")
	if authorityEnd < 0 {
		authorityEnd = len(rest)
	}

	authority := rest[:authorityEnd]
	at := strings.LastIndex(authority, "@")
	if at < 0 {
		return uri
	}

	userinfo := authority[:at]
	colon := strings.Index(userinfo, ":")
	if colon < 0 {
		return uri
	}

	return uri[:schemeEnd+3] + userinfo[:colon+1] + redactedPassword + rest[at:]
}
