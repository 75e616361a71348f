package ui

import (
	"fmt"
	"strings"
)

type experiment struct {
	id, title, kind, year string
}

var experiments = []experiment{
	{"R-01", "Spatial Degradation", "Phase Study", "2024"},
	{"R-02", "Hyper-Resonant Loops", "Tension", "2025"},
	{"R-03", "Sub-Bass Architecture", "Physicality", "2025"},
	{"R-04", "Granular Memory", "Time Study", "2024"},
}

type resource struct {
	title, desc string
}

var resources = []resource{
	{"Brand Identity", "The visual language of Sonic-57."},
	{"Audio Manifesto v1.2", "Our technical whitepaper on brutalist acoustics."},
	{"Sonic Sample Kit", "1.2GB of processed structural recordings."},
	{"Design Systems", "The interface architecture behind the player."},
	{"API Documentation", "Programmatic access to the catalog service."},
	{"Community Discord", "Join the collective of sonic architects."},
	{"Licensing Models", "Commercial use terms for the Vault tracks."},
	{"Hardware Labs", "Experimental modules and synthesizer concepts."},
}

func renderManifesto() string {
	var b strings.Builder
	b.WriteString(styles.help.Render("The Philosophy // 057") + "\n\n")
	b.WriteString(styles.title.Render("Sound is Structure.\nSilence is Space."))
	b.WriteString("\n")
	b.WriteString("We believe that digital audio has become too polite. SONIC-57 exists to restore\n")
	b.WriteString("the raw, structural integrity of sound. Our curation is not based on \"likes\" but\n")
	b.WriteString("on harmonic architecture and sonic tension.\n\n")
	b.WriteString(styles.ok.Render("01. Brutalist Ethos") + "\n")
	b.WriteString("No filters. No smoothing. We celebrate the artifact, the glitch, and the\n")
	b.WriteString("uncompressed weight of the frequency spectrum.\n\n")
	b.WriteString(styles.ok.Render("02. AI as Architect") + "\n")
	b.WriteString("We use generative intelligence not to mimic humans, but to explore mathematical\n")
	b.WriteString("spaces humans cannot reach.\n")
	return b.String()
}

func renderResearch() string {
	var b strings.Builder
	b.WriteString(styles.help.Render("Sonic Laboratory") + "\n")
	b.WriteString(styles.title.Render("Research"))
	b.WriteString("\n")
	for _, e := range experiments {
		fmt.Fprintf(&b, "%s  %-24s %-12s %s\n", styles.warn.Render(e.id), e.title, e.kind, styles.help.Render(e.year))
	}
	return b.String()
}

func renderResources() string {
	var b strings.Builder
	b.WriteString(styles.help.Render("Internal Archive") + "\n")
	b.WriteString(styles.title.Render("Resources"))
	b.WriteString("\n")
	for _, r := range resources {
		fmt.Fprintf(&b, "%s\n  %s\n", styles.ok.Render(r.title), r.desc)
	}
	return b.String()
}

func renderContact() string {
	var b strings.Builder
	b.WriteString(styles.title.Render("Establish Connection"))
	b.WriteString("\n")
	fmt.Fprintf(&b, "%s\n  void@sonic57.studio\n\n", styles.help.Render("Electronic Mail"))
	fmt.Fprintf(&b, "%s\n  40.7128° N, 74.0060° W\n", styles.help.Render("Location Data"))
	b.WriteString("  Monolithic HQ\n  Concrete District 09\n  Sonic Corridor\n")
	return b.String()
}
