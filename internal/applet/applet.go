// Package applet lists the tools the toolbox offers.
package applet

// Paths of the built-in applets.
const (
	PathNameGenerator = "generator/adjAnimalGen"
	PathHashDigest    = "generator/hashDigestGen"
)

// Applet is one self-contained tool.
type Applet struct {
	Title       string
	Path        string
	Description string
}

// Group is a titled set of applets, shown as one menu.
type Group struct {
	Title   string
	Applets []Applet
}

// Groups returns every applet group in menu order.
func Groups() []Group {
	return []Group{
		{
			Title: "Generators",
			Applets: []Applet{
				{
					Title:       "Adjective Animal Generator",
					Path:        PathNameGenerator,
					Description: "Random adjective + animal names in five styles",
				},
				{
					Title:       "Hash Digest Generator",
					Path:        PathHashDigest,
					Description: "MD5, SHA1, SHA256, SHA384 and SHA512 of text, Base64, hex or a file",
				},
			},
		},
	}
}

// All returns every applet across groups in menu order.
func All() []Applet {
	var all []Applet
	for _, g := range Groups() {
		all = append(all, g.Applets...)
	}
	return all
}

// Find looks up an applet by path.
func Find(path string) (Applet, bool) {
	for _, a := range All() {
		if a.Path == path {
			return a, true
		}
	}
	return Applet{}, false
}
