package markdown

import (
	"fmt"
	"path"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// PrettifyScript is appended to every rendered unit so code blocks pick up
// client side highlighting.
const PrettifyScript = `<script src="https://cdn.rawgit.com/google/code-prettify/master/loader/run_prettify.js?skin=default"></script>`

const (
	imageSourcePrefix = "../images/"
	fileLinkPrefix    = "files/"
	staticPrefix      = "/static/"
	prettifyClass     = "prettyprint lang-"
	goldmarkLangClass = "language-"
)

// StaticName is the flattened file name an asset of a chapter is copied to.
func StaticName(assetPrefix, name string) string {
	return assetPrefix + "_" + name
}

// PostProcess applies the platform rewrites to converter output:
// chapter images and downloads are pointed at the flat static directory,
// code blocks get prettify classes and the prettify loader is appended.
// It is not meant to be applied twice to the same markup.
func PostProcess(rendered []byte, assetPrefix string) (string, error) {
	sel, err := parseFragment(string(rendered))
	if err != nil {
		return "", err
	}

	sel.Find("img[src]").Each(func(_ int, img *goquery.Selection) {
		src, _ := img.Attr("src")
		if name, ok := strings.CutPrefix(src, imageSourcePrefix); ok && name != "" {
			img.SetAttr("src", staticPrefix+StaticName(assetPrefix, name))
		}
	})

	sel.Find("a[href]").Each(func(_ int, link *goquery.Selection) {
		href, _ := link.Attr("href")
		name, ok := strings.CutPrefix(href, fileLinkPrefix)
		if !ok || name == "" || strings.Contains(name, "/") {
			return
		}
		link.SetAttr("href", staticPrefix+StaticName(assetPrefix, name))
		link.SetAttr("download", path.Base(name))
	})

	sel.Find("pre").Each(func(_ int, pre *goquery.Selection) {
		if class, ok := pre.Attr("class"); ok && strings.TrimSpace(class) != "" {
			pre.SetAttr("class", prettifyClass+class)
			return
		}
		code := pre.ChildrenFiltered("code").First()
		class, _ := code.Attr("class")
		for _, token := range strings.Fields(class) {
			if lang, ok := strings.CutPrefix(token, goldmarkLangClass); ok && lang != "" {
				pre.SetAttr("class", prettifyClass+lang)
				return
			}
		}
	})

	out, err := sel.Html()
	if err != nil {
		return "", fmt.Errorf("render html: %w", err)
	}
	return out + PrettifyScript, nil
}

// parseFragment parses converter output in a <body> context so leading
// elements such as <style> are not hoisted into a synthetic <head>.
func parseFragment(markup string) (*goquery.Selection, error) {
	body := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	nodes, err := html.ParseFragment(strings.NewReader(markup), body)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	root := &html.Node{Type: html.ElementNode, Data: "div", DataAtom: atom.Div}
	for _, node := range nodes {
		root.AppendChild(node)
	}
	return goquery.NewDocumentFromNode(root).Selection, nil
}
