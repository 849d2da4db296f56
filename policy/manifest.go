package policy

import (
	"encoding/json"
	"net/url"
)

// rawManifest mirrors the W3C web app manifest JSON fields WebFlux cares
// about; unknown fields are ignored.
type rawManifest struct {
	Name            string            `json:"name"`
	ShortName       string            `json:"short_name"`
	Description     string            `json:"description"`
	StartURL        string            `json:"start_url"`
	Scope           string            `json:"scope"`
	Display         string            `json:"display"`
	Orientation     string            `json:"orientation"`
	ThemeColor      string            `json:"theme_color"`
	BackgroundColor string            `json:"background_color"`
	Lang            string            `json:"lang"`
	Dir             string            `json:"dir"`
	Categories      []string          `json:"categories"`
	Icons           []rawImage        `json:"icons"`
	Screenshots     []rawImage        `json:"screenshots"`
	Shortcuts       []rawShortcut     `json:"shortcuts"`
	RelatedApps     []rawRelatedApp   `json:"related_applications"`
	ShareTarget     json.RawMessage   `json:"share_target"`
}

type rawImage struct {
	Src   string `json:"src"`
	Sizes string `json:"sizes"`
	Type  string `json:"type"`
}

type rawShortcut struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

type rawRelatedApp struct {
	Platform string `json:"platform"`
	URL      string `json:"url"`
	ID       string `json:"id"`
}

// ParseManifest parses a web app manifest document, resolving relative
// URLs (start_url, scope, icon/screenshot src, shortcut urls) against
// baseURL. A malformed document is a soft failure: it returns (nil, err),
// and the caller (Cache.fetchManifest) treats that the same as "no
// manifest" rather than failing the whole policy fetch.
func ParseManifest(body []byte, baseURL string) (*ManifestInfo, error) {
	var raw rawManifest
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, err
	}

	base, err := url.Parse(baseURL)
	if err != nil {
		base = nil
	}

	resolve := func(ref string) string {
		if ref == "" || base == nil {
			return ref
		}
		u, err := url.Parse(ref)
		if err != nil {
			return ref
		}
		return base.ResolveReference(u).String()
	}

	info := &ManifestInfo{
		Name:            raw.Name,
		ShortName:       raw.ShortName,
		Description:     raw.Description,
		StartURL:        resolve(raw.StartURL),
		Scope:           resolve(raw.Scope),
		Display:         raw.Display,
		Orientation:     raw.Orientation,
		ThemeColor:      raw.ThemeColor,
		BackgroundColor: raw.BackgroundColor,
		Lang:            raw.Lang,
		Dir:             raw.Dir,
		Categories:      raw.Categories,
	}

	for _, icon := range raw.Icons {
		info.Icons = append(info.Icons, ManifestImage{Src: resolve(icon.Src), Sizes: icon.Sizes, Type: icon.Type})
	}
	for _, shot := range raw.Screenshots {
		info.Screenshots = append(info.Screenshots, ManifestImage{Src: resolve(shot.Src), Sizes: shot.Sizes, Type: shot.Type})
	}
	for _, sc := range raw.Shortcuts {
		info.Shortcuts = append(info.Shortcuts, ManifestShortcut{Name: sc.Name, URL: resolve(sc.URL)})
	}
	for _, app := range raw.RelatedApps {
		ref := app.URL
		if ref == "" {
			ref = app.ID
		}
		if ref != "" {
			info.RelatedApps = append(info.RelatedApps, ref)
		}
	}
	if len(raw.ShareTarget) > 0 {
		info.ShareTarget = string(raw.ShareTarget)
	}

	return info, nil
}

// manifestCandidatePaths are probed in order against a host's root, per
// §4.1's supplemented manifest-discovery feature.
var manifestCandidatePaths = []string{
	"/manifest.json",
	"/manifest.webmanifest",
	"/app.webmanifest",
	"/site.webmanifest",
}
