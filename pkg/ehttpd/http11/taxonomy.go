package http11

import "strings"

// Method identifies an HTTP request method. The wire restricts these to
// the six methods an embedded server core needs to support; there is no
// CONNECT, TRACE or PATCH slot -- a request using one of those fails
// request-line parsing exactly like any other unknown token.
type Method int8

const InvalidMethod Method = -1

const (
	MethodDELETE Method = iota
	MethodGET
	MethodHEAD
	MethodPOST
	MethodPUT
	MethodOPTIONS
	methodCount
)

var methodNames = [...]string{"DELETE", "GET", "HEAD", "POST", "PUT", "OPTIONS"}

// String returns the canonical wire token for m, or "" for InvalidMethod.
func (m Method) String() string {
	if m < 0 || int(m) >= len(methodNames) {
		return ""
	}
	return methodNames[m]
}

// ParseMethod resolves a wire token to its Method, case-insensitively.
// Unlike header and enum-value resolution the request line is the one
// place where an unknown token is always fatal, so there is no lax mode.
func ParseMethod(tok []byte) Method {
	for i, name := range methodNames {
		if len(tok) == len(name) && strings.EqualFold(string(tok), name) {
			return Method(i)
		}
	}
	return InvalidMethod
}

// Mask returns the 1<<method bit used by route method masks.
func (m Method) Mask() uint32 {
	if m < 0 {
		return 0
	}
	return 1 << uint(m)
}

// Header identifies a header field this core understands a typed value
// for. Headers outside this set are still transmitted and still
// traverse the generic header loop, but their value is skipped rather
// than parsed into a slot.
type Header int

const (
	HeaderAccept Header = iota
	HeaderAcceptCharset
	HeaderAcceptEncoding
	HeaderAcceptLanguage
	HeaderAuthorization
	HeaderCacheControl
	HeaderConnection
	HeaderContentEncoding
	HeaderContentType
	HeaderContentLength
	HeaderCookie
	HeaderDate
	HeaderHost
	HeaderOrigin
	HeaderRange
	HeaderReferer
	HeaderTE
	HeaderTransferEncoding
	HeaderUpgrade
	HeaderUserAgent
	// MaxSupport extras -- only registered in header sets built with the
	// MaxSupport knob enabled; see WithMaxSupport.
	HeaderAccessControlRequestMethod
	HeaderAccessControlRequestHeaders
	HeaderIfMatch
	HeaderIfNoneMatch
	HeaderIfModifiedSince
	HeaderETag
	headerCount
	InvalidHeader Header = -1
)

// identifierNames mirrors the Go identifier used to declare each Header
// constant (minus the Header prefix); deriveWireName computes the
// canonical wire form from it by inserting a '-' before every uppercase
// letter beyond position 0.
var identifierNames = [...]string{
	"Accept",
	"AcceptCharset",
	"AcceptEncoding",
	"AcceptLanguage",
	"Authorization",
	"CacheControl",
	"Connection",
	"ContentEncoding",
	"ContentType",
	"ContentLength",
	"Cookie",
	"Date",
	"Host",
	"Origin",
	"Range",
	"Referer",
	"TE",
	"TransferEncoding",
	"Upgrade",
	"UserAgent",
	"AccessControlRequestMethod",
	"AccessControlRequestHeaders",
	"IfMatch",
	"IfNoneMatch",
	"IfModifiedSince",
	"ETag",
}

// wireNames is populated once at init from identifierNames: names
// shorter than 5 characters (e.g. "TE", "Host", "ETag") pass through
// unchanged, everything else gets a '-' before each uppercase letter
// past index 0.
var wireNames [len(identifierNames)]string

func init() {
	for i, id := range identifierNames {
		wireNames[i] = deriveWireName(id)
	}
}

func deriveWireName(identifier string) string {
	if len(identifier) < 5 {
		return identifier
	}
	var b strings.Builder
	b.Grow(len(identifier) + 4)
	for i, r := range identifier {
		if i > 0 && r >= 'A' && r <= 'Z' {
			b.WriteByte('-')
		}
		b.WriteRune(r)
	}
	return b.String()
}

// WireName returns the canonical "Like-This" wire form of h.
func (h Header) WireName() string {
	if h < 0 || int(h) >= len(wireNames) {
		return ""
	}
	return wireNames[h]
}

// ParseHeaderName resolves a wire header name to its Header identifier,
// case-insensitively, in O(k) over the known set. Unknown headers
// resolve to InvalidHeader; the generic header loop skips their value
// rather than treating this as an error.
func ParseHeaderName(name []byte) Header {
	for i, wire := range wireNames {
		if strings.EqualFold(string(name), wire) {
			return Header(i)
		}
	}
	return InvalidHeader
}

// MaxSupportHeaders lists the extension headers registered only in
// header sets built under the MaxSupport(1) configuration knob:
// conditional-request (If-Match/If-None-Match/If-Modified-Since/ETag)
// and CORS preflight (Access-Control-Request-*) headers. They resolve
// to a plain StringValue slot via DefaultSlotFactory's default case --
// this core classifies them, it does not implement conditional-GET or
// CORS policy itself.
var MaxSupportHeaders = []Header{
	HeaderAccessControlRequestMethod,
	HeaderAccessControlRequestHeaders,
	HeaderIfMatch,
	HeaderIfNoneMatch,
	HeaderIfModifiedSince,
	HeaderETag,
}

// WithMaxSupport appends the MaxSupport extension headers to ids. A
// route declared under a build with the MaxSupport knob enabled should
// wrap its ExpectedHeaders literal in this helper; a build with the
// knob off should list ids directly and never reference the extras.
func WithMaxSupport(ids []Header) []Header {
	out := make([]Header, 0, len(ids)+len(MaxSupportHeaders))
	out = append(out, ids...)
	out = append(out, MaxSupportHeaders...)
	return out
}

// StatusCode is an HTTP response status code with its canonical reason
// phrase (note the "Ok" spelling, not "OK").
type StatusCode int

const (
	StatusOK                  StatusCode = 200
	StatusNotFound            StatusCode = 404
	StatusBadRequest          StatusCode = 400
	StatusNotAcceptable       StatusCode = 406
	StatusEntityTooLarge      StatusCode = 413
	StatusInternalServerError StatusCode = 500
)

var reasonPhrases = map[StatusCode]string{
	StatusOK:                  "Ok",
	StatusBadRequest:          "Bad Request",
	StatusNotFound:            "Not Found",
	StatusNotAcceptable:       "Not Acceptable",
	StatusEntityTooLarge:      "Entity Too Large",
	StatusInternalServerError: "Internal Server Error",
}

// Reason returns the canonical reason phrase for c, or "Unknown" if c is
// not one registered by this core.
func (c StatusCode) Reason() string {
	if r, ok := reasonPhrases[c]; ok {
		return r
	}
	return "Unknown"
}

// MIMEType enumerates the media types this core resolves by name; it
// backs the Accept and Content-Type value parsers.
type MIMEType int

const (
	MIMEUnknown MIMEType = iota - 1
	MIMETextPlain
	MIMETextHTML
	MIMEApplicationJSON
	MIMEApplicationOctetStream
	MIMEApplicationXWWWFormURLEncoded
	MIMEMultipartFormData
	mimeCount
)

var mimeNames = [...]string{
	"text/plain",
	"text/html",
	"application/json",
	"application/octet-stream",
	"application/x-www-form-urlencoded",
	"multipart/form-data",
}

func (m MIMEType) String() string {
	if m < 0 || int(m) >= len(mimeNames) {
		return ""
	}
	return mimeNames[m]
}

// ParseMIMEType resolves a media-type token case-insensitively; the
// enum carries its literal wire string, punctuation included, so no
// placeholder substitution is needed to recover '+' or '.'.
func ParseMIMEType(tok []byte) MIMEType {
	for i, name := range mimeNames {
		if strings.EqualFold(string(tok), name) {
			return MIMEType(i)
		}
	}
	return MIMEUnknown
}

// Encoding enumerates Accept-Encoding / Content-Encoding / TE /
// Transfer-Encoding tokens.
type Encoding int

const (
	EncodingUnknown Encoding = iota - 1
	EncodingIdentity
	EncodingGzip
	EncodingDeflate
	EncodingBr
	EncodingChunked
	encodingCount
)

var encodingNames = [...]string{"identity", "gzip", "deflate", "br", "chunked"}

func (e Encoding) String() string {
	if e < 0 || int(e) >= len(encodingNames) {
		return ""
	}
	return encodingNames[e]
}

func ParseEncoding(tok []byte) Encoding {
	for i, name := range encodingNames {
		if strings.EqualFold(string(tok), name) {
			return Encoding(i)
		}
	}
	return EncodingUnknown
}

// Language enumerates Accept-Language primary tags this core resolves;
// anything else still parses (EnumWithAttribute is lax here per the
// header table) but yields LanguageUnknown.
type Language int

const (
	LanguageUnknown Language = iota - 1
	LanguageEn
	LanguageFr
	LanguageDe
	LanguageEs
	languageCount
)

var languageNames = [...]string{"en", "fr", "de", "es"}

func (l Language) String() string {
	if l < 0 || int(l) >= len(languageNames) {
		return ""
	}
	return languageNames[l]
}

func ParseLanguage(tok []byte) Language {
	for i, name := range languageNames {
		if strings.EqualFold(string(tok), name) {
			return Language(i)
		}
	}
	return LanguageUnknown
}

// CacheDirective enumerates Cache-Control directive tokens.
type CacheDirective int

const (
	CacheDirectiveUnknown CacheDirective = iota - 1
	CacheDirectiveNoCache
	CacheDirectiveNoStore
	CacheDirectiveMaxAge
	CacheDirectivePrivate
	CacheDirectivePublic
	cacheDirectiveCount
)

var cacheDirectiveNames = [...]string{"no-cache", "no-store", "max-age", "private", "public"}

func (c CacheDirective) String() string {
	if c < 0 || int(c) >= len(cacheDirectiveNames) {
		return ""
	}
	return cacheDirectiveNames[c]
}

func ParseCacheDirective(tok []byte) CacheDirective {
	for i, name := range cacheDirectiveNames {
		if strings.EqualFold(string(tok), name) {
			return CacheDirective(i)
		}
	}
	return CacheDirectiveUnknown
}

// Connection enumerates the Connection header's strict value set:
// anything outside {keep-alive, close} is InvalidRequest, matching the
// StrictEnum<Connection> slot from the header table.
type Connection int

const (
	ConnectionUnknown Connection = iota - 1
	ConnectionKeepAlive
	ConnectionClose
	connectionCount
)

var connectionNames = [...]string{"keep-alive", "close"}

func (c Connection) String() string {
	if c < 0 || int(c) >= len(connectionNames) {
		return ""
	}
	return connectionNames[c]
}

func ParseConnection(tok []byte) Connection {
	for i, name := range connectionNames {
		if strings.EqualFold(string(tok), name) {
			return Connection(i)
		}
	}
	return ConnectionUnknown
}
