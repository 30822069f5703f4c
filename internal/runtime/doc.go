// Package runtime implements the conversation stack algorithm on top of a composed frame set.
package runtime
