package entity

// supportedLanguages maps language slugs to display names.
var supportedLanguages = map[string]string{
	"applescript":  "AppleScript",
	"bash":         "Bash",
	"c":            "C",
	"coffeescript": "CoffeeScript",
	"cpp":          "C++",
	"csharp":       "C#",
	"css":          "CSS",
	"dart":         "Dart",
	"docker":       "Dockerfile",
	"erlang":       "Erlang",
	"go":           "Go",
	"groovy":       "Groovy",
	"haskell":      "Haskell",
	"html":         "HTML",
	"http":         "HTTP",
	"java":         "Java",
	"js":           "JavaScript",
	"json":         "JSON",
	"jsx":          "JSX",
	"kotlin":       "Kotlin",
	"less":         "Less",
	"markdown":     "Markdown",
	"matlab":       "Matlab",
	"nginx":        "Nginx",
	"none":         "None",
	"objectivec":   "Objective-C",
	"perl":         "Perl",
	"php":          "PHP",
	"plaintext":    "PlainText",
	"powershell":   "PowerShell",
	"python":       "Python",
	"r":            "R",
	"ruby":         "Ruby",
	"rust":         "Rust",
	"sass":         "Sass",
	"scala":        "Scala",
	"scheme":       "Scheme",
	"scss":         "Scss",
	"sql":          "SQL",
	"swift":        "Swift",
	"twig":         "Twig",
	"typescript":   "TypeScript",
	"xml":          "XML",
	"yaml":         "YAML",
}

// DisplayName returns the human readable name of slug. Unknown slugs are
// returned unchanged.
func DisplayName(slug string) string {
	if name, ok := supportedLanguages[slug]; ok {
		return name
	}
	return slug
}

// SupportedLanguages returns a copy of the slug to display name table.
func SupportedLanguages() map[string]string {
	out := make(map[string]string, len(supportedLanguages))
	for k, v := range supportedLanguages {
		out[k] = v
	}
	return out
}
