// Codecritic reviews Python, Java, C++ and prose snippets with local checkers
// and an LLM.
//
// Local tools (pylint, javac, g++, a LanguageTool server) run first and their
// findings are embedded in the prompt. The model's reply is parsed leniently
// into syntax, logical and style issues, an explanation, suggested tests and a
// fixed version of the input.
//
// Usage:
//
//	codecritic analyze main.py                # review a file, language from extension
//	cat Main.java | codecritic analyze -l java   # review stdin
//	codecritic analyze notes.md -f markdown   # grammar and style review
//	codecritic serve --addr :8080             # HTTP API
//	codecritic tools                          # check local tool availability
//	codecritic models doctor                  # validate provider credentials
//	codecritic cache clear                    # drop cached model replies
//
// Exit codes: 0 success, 1 --fail-on threshold met, 2 usage error or empty
// input, 3 authentication failure, 4 runtime or remote failure.
package main
