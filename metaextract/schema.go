package metaextract

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/iyulab/webflux/content"
)

// schemaAliases maps a lowercased alternate @type to the canonical family
// it is treated as (§4.5: "Article ⊇ BlogPosting, NewsArticle;
// SoftwareApplication ⊇ SoftwareLibrary").
var schemaAliases = map[string]string{
	"blogposting":         "article",
	"newsarticle":         "article",
	"article":             "article",
	"softwarelibrary":     "softwareapplication",
	"softwareapplication": "softwareapplication",
	"organization":        "organization",
	"person":              "person",
	"product":             "product",
	"website":             "website",
}

func extractSchemaOrg(doc *goquery.Document) content.SchemaOrg {
	var out content.SchemaOrg
	var mainSet bool

	doc.Find("script[type='application/ld+json']").Each(func(_ int, s *goquery.Selection) {
		raw := s.Text()
		out.RawJSONLD = append(out.RawJSONLD, raw)

		var node map[string]interface{}
		if err := json.Unmarshal([]byte(raw), &node); err != nil {
			return // malformed JSON-LD skipped silently
		}
		applyJSONLDNode(&out, node, &mainSet)
	})

	mineBreadcrumbsFromDOM(doc, &out)
	mineFAQFromDOM(doc, &out)

	return out
}

func applyJSONLDNode(out *content.SchemaOrg, node map[string]interface{}, mainSet *bool) {
	rawType, _ := node["@type"].(string)
	family := schemaAliases[strings.ToLower(rawType)]

	switch family {
	case "article":
		out.Article = toArticle(node)
	case "organization":
		out.Organization = toOrganization(node)
	case "person":
		out.Person = toPerson(node)
	case "softwareapplication":
		out.Software = toSoftware(node)
	case "product":
		out.Product = toProduct(node)
	case "website":
		out.WebSite = toWebSite(node)
	case "breadcrumblist":
		out.Breadcrumbs = append(out.Breadcrumbs, breadcrumbNames(node)...)
	case "faqpage":
		out.FAQs = append(out.FAQs, faqItems(node)...)
	}

	if rawType == "" {
		rawType, _ = node["@type"].(string)
	}
	if strings.EqualFold(rawType, "BreadcrumbList") {
		out.Breadcrumbs = append(out.Breadcrumbs, breadcrumbNames(node)...)
	}
	if strings.EqualFold(rawType, "FAQPage") {
		out.FAQs = append(out.FAQs, faqItems(node)...)
	}

	if !*mainSet && rawType != "" {
		out.MainEntityType = rawType
		*mainSet = true
	}
}

// nameOf returns either a bare string field or the "name" field of a
// nested object — Schema.org allows author/publisher/brand to be either.
func nameOf(v interface{}) string {
	switch t := v.(type) {
	case string:
		return t
	case map[string]interface{}:
		if n, ok := t["name"].(string); ok {
			return n
		}
	}
	return ""
}

func strField(node map[string]interface{}, key string) string {
	v, _ := node[key].(string)
	return v
}

func parseSchemaTime(v string) time.Time {
	for _, layout := range []string{time.RFC3339, "2006-01-02", "2006-01-02T15:04:05"} {
		if t, err := time.Parse(layout, v); err == nil {
			return t
		}
	}
	return time.Time{}
}

func toArticle(node map[string]interface{}) *content.ArticleEntity {
	return &content.ArticleEntity{
		Headline:      strField(node, "headline"),
		Author:        nameOf(node["author"]),
		DatePublished: parseSchemaTime(strField(node, "datePublished")),
		DateModified:  parseSchemaTime(strField(node, "dateModified")),
		Publisher:     nameOf(node["publisher"]),
		Description:   strField(node, "description"),
	}
}

func toOrganization(node map[string]interface{}) *content.OrganizationEntity {
	logo := ""
	if l, ok := node["logo"].(map[string]interface{}); ok {
		logo, _ = l["url"].(string)
	} else if l, ok := node["logo"].(string); ok {
		logo = l
	}
	return &content.OrganizationEntity{
		Name: strField(node, "name"),
		URL:  strField(node, "url"),
		Logo: logo,
	}
}

func toPerson(node map[string]interface{}) *content.PersonEntity {
	return &content.PersonEntity{Name: strField(node, "name"), URL: strField(node, "url")}
}

func toSoftware(node map[string]interface{}) *content.SoftwareEntity {
	return &content.SoftwareEntity{
		Name:          strField(node, "name"),
		OperatingSys:  strField(node, "operatingSystem"),
		ApplicationCt: strField(node, "applicationCategory"),
	}
}

func toProduct(node map[string]interface{}) *content.ProductEntity {
	price := ""
	if offers, ok := node["offers"].(map[string]interface{}); ok {
		price = strField(offers, "price")
	}
	return &content.ProductEntity{
		Name:  strField(node, "name"),
		Brand: nameOf(node["brand"]),
		Price: price,
	}
}

func toWebSite(node map[string]interface{}) *content.WebSiteEntity {
	return &content.WebSiteEntity{Name: strField(node, "name"), URL: strField(node, "url")}
}

func breadcrumbNames(node map[string]interface{}) []string {
	items, _ := node["itemListElement"].([]interface{})
	var names []string
	for _, raw := range items {
		item, ok := raw.(map[string]interface{})
		if !ok {
			continue
		}
		if n := strField(item, "name"); n != "" {
			names = append(names, n)
			continue
		}
		if nested, ok := item["item"].(map[string]interface{}); ok {
			if n := strField(nested, "name"); n != "" {
				names = append(names, n)
			}
		}
	}
	return names
}

func faqItems(node map[string]interface{}) []content.FAQItem {
	entities, _ := node["mainEntity"].([]interface{})
	var out []content.FAQItem
	for _, raw := range entities {
		q, ok := raw.(map[string]interface{})
		if !ok {
			continue
		}
		question := strField(q, "name")
		answer := ""
		if a, ok := q["acceptedAnswer"].(map[string]interface{}); ok {
			answer = strField(a, "text")
		}
		if question != "" {
			out = append(out, content.FAQItem{Question: question, Answer: answer})
		}
	}
	return out
}

// mineBreadcrumbsFromDOM looks for a common [itemtype*=BreadcrumbList]
// microdata pattern when JSON-LD omitted breadcrumbs.
func mineBreadcrumbsFromDOM(doc *goquery.Document, out *content.SchemaOrg) {
	if len(out.Breadcrumbs) > 0 {
		return
	}
	doc.Find("[itemtype*='BreadcrumbList'] [itemprop='name']").Each(func(_ int, s *goquery.Selection) {
		if text := strings.TrimSpace(s.Text()); text != "" {
			out.Breadcrumbs = append(out.Breadcrumbs, text)
		}
	})
	if len(out.Breadcrumbs) == 0 {
		doc.Find("nav[aria-label='breadcrumb'] li, .breadcrumb li, .breadcrumbs li").Each(func(_ int, s *goquery.Selection) {
			if text := strings.TrimSpace(s.Text()); text != "" {
				out.Breadcrumbs = append(out.Breadcrumbs, text)
			}
		})
	}
}

// mineFAQFromDOM looks for common FAQ DOM shapes (details/summary pairs,
// or .faq-item question/answer blocks) when JSON-LD omitted them.
func mineFAQFromDOM(doc *goquery.Document, out *content.SchemaOrg) {
	if len(out.FAQs) > 0 {
		return
	}
	doc.Find("details").Each(func(_ int, s *goquery.Selection) {
		q := strings.TrimSpace(s.Find("summary").First().Text())
		if q == "" {
			return
		}
		a := s.Clone()
		a.Find("summary").Remove()
		answer := strings.TrimSpace(a.Text())
		out.FAQs = append(out.FAQs, content.FAQItem{Question: q, Answer: answer})
	})
}
