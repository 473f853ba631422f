package exports

import (
	bstate "github.com/viant/bindly/state"
	"github.com/viant/parsly"

	"github.com/modscope/modscope/model/exports"
)

// Parse parses a typed export declaration in the format:
// exportName[fully qualified type name](kind/location)
// where kind is one of value|env|import and location names the env key or
// the alias.export path the value is bound from.
func Parse(input []byte) (*exports.Declaration, error) {
	cursor := parsly.NewCursor("", input, 0)
	declaration := &exports.Declaration{Location: &bstate.Location{}}

	// Match the export name (identifier)
	matched := cursor.MatchOne(identifierToken)
	if matched.Code != identifierToken.Code {
		return nil, cursor.NewError(identifierToken)
	}
	declaration.Name = matched.Text(cursor)

	// Match the opening square bracket for type
	matched = cursor.MatchOne(openSquareBracketToken)
	if matched.Code != openSquareBracketToken.Code {
		return nil, cursor.NewError(openSquareBracketToken)
	}

	// Match the fully qualified type name
	matched = cursor.MatchOne(qualifiedTypeToken)
	if matched.Code != qualifiedTypeToken.Code {
		return nil, cursor.NewError(qualifiedTypeToken)
	}
	declaration.DataType = matched.Text(cursor)

	// Match the closing square bracket
	matched = cursor.MatchOne(closeSquareBracketToken)
	if matched.Code != closeSquareBracketToken.Code {
		return nil, cursor.NewError(closeSquareBracketToken)
	}

	// Match the opening parenthesis for the binding location
	matched = cursor.MatchAfterOptional(whitespaceToken, openParenToken)
	if matched.Code != openParenToken.Code {
		return nil, cursor.NewError(openParenToken)
	}

	// Parse the kind/location part
	matched = cursor.MatchAny(kindToken, closeParenToken)
	switch matched.Code {
	case kindToken.Code:
	case closeParenToken.Code:
		return declaration, nil
	default:
		return nil, cursor.NewError(kindToken)
	}
	kindText := matched.Text(cursor)

	// Check for the separator (/)
	matched = cursor.MatchOne(slashToken)
	if matched.Code != slashToken.Code {
		declaration.Location.Kind = kindText
		matched = cursor.MatchOne(closeParenToken)
		if matched.Code != closeParenToken.Code {
			return nil, cursor.NewError(closeParenToken)
		}
		return declaration, nil
	}

	declaration.Location.Kind = kindText

	// Match the location
	matched = cursor.MatchOne(locationToken)
	if matched.Code != locationToken.Code {
		return nil, cursor.NewError(locationToken)
	}
	declaration.Location.In = matched.Text(cursor)

	// Match the closing parenthesis
	matched = cursor.MatchOne(closeParenToken)
	if matched.Code != closeParenToken.Code {
		return nil, cursor.NewError(closeParenToken)
	}
	return declaration, nil
}

// IsDeclaration returns true when the manifest export key carries type or
// binding information (i.e. needs Parse rather than literal handling).
func IsDeclaration(key string) bool {
	for i := 0; i < len(key); i++ {
		if key[i] == '[' {
			return i > 0
		}
	}
	return false
}
