// Package checks runs fast, offline analysis of a snippet before it is sent
// to the remote model.
//
// Each supported language has one [Checker]:
//   - python: tree-sitter syntax scan plus pylint when it is on PATH
//   - java:   javac -Xlint in a throwaway directory
//   - cpp:    g++ -fsyntax-only in a throwaway directory
//   - doc:    LanguageTool grammar/style check over HTTP
//
// Checkers never fail. Missing tools, timeouts and non-zero exits are
// recorded as fields of the returned [Result] so that the remote analysis
// step always runs. Use [NewSet] to build the set and [Set.Check] to
// dispatch by [Language]; unknown tags go to the doc checker.
package checks
