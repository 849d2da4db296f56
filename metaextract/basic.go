package metaextract

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/iyulab/webflux/content"
)

func resolveAgainst(base, href string) string {
	href = strings.TrimSpace(href)
	if href == "" {
		return ""
	}
	baseURL, err := url.Parse(base)
	if err != nil {
		return href
	}
	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	return baseURL.ResolveReference(ref).String()
}

func extractBasic(doc *goquery.Document, baseURL string) content.BasicMeta {
	meta := content.BasicMeta{
		Title: strings.TrimSpace(doc.Find("title").First().Text()),
		Lang:  attrOr(doc.Find("html").First(), "lang"),
	}

	doc.Find("meta").Each(func(_ int, s *goquery.Selection) {
		name := strings.ToLower(attrOr(s, "name"))
		content_ := attrOr(s, "content")
		switch name {
		case "description":
			meta.Description = content_
		case "keywords":
			for _, k := range strings.Split(content_, ",") {
				if k = strings.TrimSpace(k); k != "" {
					meta.Keywords = append(meta.Keywords, k)
				}
			}
		case "author":
			meta.Author = content_
		case "viewport":
			meta.Viewport = content_
		case "theme-color":
			meta.ThemeColor = content_
		case "robots":
			meta.Robots = content_
		}
		if charset, ok := s.Attr("charset"); ok {
			meta.Charset = charset
		}
	})

	if canonical, ok := doc.Find("link[rel='canonical']").First().Attr("href"); ok {
		meta.Canonical = resolveAgainst(baseURL, canonical)
	}

	doc.Find("link[rel='alternate']").Each(func(_ int, s *goquery.Selection) {
		hreflang, ok := s.Attr("hreflang")
		if !ok {
			return
		}
		href, _ := s.Attr("href")
		meta.Alternates = append(meta.Alternates, content.Alternate{
			HrefLang: hreflang,
			Href:     resolveAgainst(baseURL, href),
		})
	})

	return meta
}

func extractOpenGraph(doc *goquery.Document) content.OpenGraph {
	var og content.OpenGraph
	doc.Find("meta[property]").Each(func(_ int, s *goquery.Selection) {
		prop := strings.ToLower(attrOr(s, "property"))
		if !strings.HasPrefix(prop, "og:") {
			return
		}
		val := attrOr(s, "content")
		switch prop {
		case "og:title":
			og.Title = val
		case "og:type":
			og.Type = val
		case "og:image":
			og.Image = val
		case "og:image:width":
			og.ImageWidth, _ = strconv.Atoi(val)
		case "og:image:height":
			og.ImageHeight, _ = strconv.Atoi(val)
		case "og:url":
			og.URL = val
		case "og:site_name":
			og.SiteName = val
		case "og:description":
			og.Description = val
		}
	})
	return og
}

func extractTwitter(doc *goquery.Document) content.TwitterCard {
	var tw content.TwitterCard
	doc.Find("meta[name]").Each(func(_ int, s *goquery.Selection) {
		name := strings.ToLower(attrOr(s, "name"))
		if !strings.HasPrefix(name, "twitter:") {
			return
		}
		val := attrOr(s, "content")
		switch name {
		case "twitter:card":
			tw.Card = val
		case "twitter:site":
			tw.Site = val
		case "twitter:creator":
			tw.Creator = val
		case "twitter:title":
			tw.Title = val
		case "twitter:description":
			tw.Description = val
		case "twitter:image":
			tw.Image = val
		}
	})
	return tw
}

func extractDublinCore(doc *goquery.Document) content.DublinCore {
	var dc content.DublinCore
	doc.Find("meta[name]").Each(func(_ int, s *goquery.Selection) {
		name := strings.ToLower(attrOr(s, "name"))
		val := attrOr(s, "content")
		switch name {
		case "dc.title":
			dc.Title = val
		case "dc.creator":
			dc.Creator = val
		case "dc.subject":
			dc.Subject = val
		case "dc.date":
			dc.Date = val
		case "dc.language":
			dc.Language = val
		}
	})
	return dc
}
