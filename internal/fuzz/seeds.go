package fuzztests

import "testing"

const maxFuzzInput = 1 << 16 // 64 KiB

var languageSeeds = []string{
	"",
	"ls\n",
	"let x = 5\n",
	"mut counter = 0\n$counter = $counter + 1\n",
	"let myVariable = 5\nprint $myVariable\n",
	"def greet [name: string] {\n  print $\"hello ($name)\"\n}\n",
	"ls | where size > 1kb | length\n",
	"open file.txt | split row \"\\n\"\n",
	"if ($list | is-empty) { echo nothing }\n",
	"^curl -s https://example.com\n",
	"let r = {a: 1, b: {c: 2}}\n$r.b.c\n",
	"[1 2 3] | each {|it| $it * 2 }\n",
	"# lint-ignore: snake_case_variables\nlet myVariable = 5\n",
	"let x = (",
	"let = 1\n",
	"def f [] {}\n",
	"{ | }",
	"$a.b.\n",
	"ls\n| length\n",
}

func addCorpusSeeds(f *testing.F) {
	for _, seed := range languageSeeds {
		f.Add([]byte(seed))
	}
}

func clampInput(input []byte) []byte {
	if len(input) > maxFuzzInput {
		return append([]byte(nil), input[:maxFuzzInput]...)
	}
	return append([]byte(nil), input...)
}
