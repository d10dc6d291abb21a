package http11

// ParsingError is the three-way result every value parser and the
// request-line parser report: a clean single-shot parse (EndOfRequest),
// a parse that wants another refill before it can conclude (MoreData),
// or a parse that found the input malformed (InvalidRequest).
//
// The name EndOfRequest does not mean "the connection is done"; it
// means "this value is fully parsed from what was given it".
type ParsingError int

const (
	InvalidRequest ParsingError = -1
	EndOfRequest   ParsingError = 0
	MoreData       ParsingError = 1
)

func (e ParsingError) String() string {
	switch e {
	case InvalidRequest:
		return "InvalidRequest"
	case EndOfRequest:
		return "EndOfRequest"
	case MoreData:
		return "MoreData"
	default:
		return "ParsingError(?)"
	}
}
