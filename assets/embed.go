// assets/embed.go
//
// Embedded default word lists. They keep the service runnable with no
// configuration; production deployments point WORDS_ANSWERS_FILE and
// WORDS_ALLOWED_FILE at the full official lists instead.
package assets

import _ "embed"

//go:embed answers.txt
var DefaultAnswers string

//go:embed allowed.txt
var DefaultAllowed string
