package messages

import (
	"fmt"
)

// MessageDetail is the human-readable text attached to one rule. Title and
// Message may carry fmt verbs filled in by the analyzer.
type MessageDetail struct {
	Title   string
	Message string
	Fix     string
}

type rawMessageDetail struct {
	TitleEN   string
	MessageEN string
	FixEN     string
}

var issueMessages = map[string]rawMessageDetail{
	// Accessibility
	"A11Y_IMG_MISSING_ALT": {
		TitleEN:   "Image without alt attribute",
		MessageEN: "An <img> tag has no alt attribute. Screen readers cannot convey its content to blind or low-vision users.",
		FixEN:     "Add an alt attribute that describes the image. Use alt=\"\" for purely decorative images.",
	},
	"A11Y_INPUT_MISSING_LABEL": {
		TitleEN:   "Form field without a label",
		MessageEN: "An input field has no associated <label>, aria-label, aria-labelledby or title. Assistive technologies cannot announce its purpose.",
		FixEN:     "Associate a visible <label for=\"...\"> with the field, or provide an aria-label when a visible label is not possible.",
	},
	"A11Y_HTML_LANG_MISSING": {
		TitleEN:   "Missing lang attribute on <html>",
		MessageEN: "The root element does not declare the page language. Screen readers may pronounce the content with the wrong voice.",
		FixEN:     "Declare the document language on the root element, for example <html lang=\"en\">.",
	},
	"A11Y_H1_MISSING": {
		TitleEN:   "No H1 heading found",
		MessageEN: "The page has no top-level heading. Users navigating by headings cannot identify the main subject of the page.",
		FixEN:     "Add a single <h1> that describes the main content of the page.",
	},
	"A11Y_H1_MULTIPLE": {
		TitleEN:   "Multiple H1 headings detected",
		MessageEN: "The page contains %d <h1> elements, which blurs the document outline.",
		FixEN:     "Keep one <h1> per page and demote the other headings to <h2> or lower.",
	},
	"A11Y_HEADING_LEVEL_SKIPPED": {
		TitleEN:   "Skipped heading level",
		MessageEN: "The heading %q (H%d) follows an H%d, which skips a level in the hierarchy.",
		FixEN:     "Use heading levels in sequence (H1, H2, H3...) without skipping intermediate levels.",
	},
	"A11Y_SKIP_LINK_MISSING": {
		TitleEN:   "Missing skip navigation link",
		MessageEN: "No link lets keyboard users jump straight to the main content.",
		FixEN:     "Add a \"Skip to main content\" link as the first focusable element, pointing at the main content anchor.",
	},
	"A11Y_MAIN_LANDMARK_MISSING": {
		TitleEN:   "Missing <main> landmark",
		MessageEN: "The page does not mark its main content with <main> or role=\"main\".",
		FixEN:     "Wrap the primary content of the page in a <main> element.",
	},
	"A11Y_NAV_LANDMARK_MISSING": {
		TitleEN:   "Missing <nav> landmark",
		MessageEN: "No navigation landmark (<nav> or role=\"navigation\") was found.",
		FixEN:     "Wrap the main navigation links in a <nav> element with a descriptive aria-label.",
	},
	"A11Y_SMALL_FONT_SIZE": {
		TitleEN:   "Text smaller than 12px detected",
		MessageEN: "%d font-size declaration(s) below 12px were found. Small text is hard to read, especially on mobile.",
		FixEN:     "Use a minimum of 12px (ideally 16px for body text) and prefer relative units such as rem.",
	},

	// Performance
	"PERF_VIEWPORT_MISSING": {
		TitleEN:   "Missing viewport meta tag",
		MessageEN: "Without <meta name=\"viewport\">, mobile browsers render the page at desktop width and scale it down.",
		FixEN:     "Add <meta name=\"viewport\" content=\"width=device-width, initial-scale=1\"> to the <head>.",
	},
	"PERF_BLOCKING_SCRIPT": {
		TitleEN:   "Render-blocking script in <head>",
		MessageEN: "The script %s is loaded synchronously in the <head> and blocks the first render.",
		FixEN:     "Add defer or async to the script tag, or move it to the end of the <body>.",
	},
	"PERF_IMG_NO_LAZY": {
		TitleEN:   "Images without a loading strategy",
		MessageEN: "%d image(s) have no loading attribute. Off-screen images are downloaded eagerly and delay the page.",
		FixEN:     "Add loading=\"lazy\" to below-the-fold images and loading=\"eager\" to the main visual.",
	},
	"PERF_LARGE_INLINE_SCRIPT": {
		TitleEN:   "Large inline scripts",
		MessageEN: "%d inline script(s) exceed 5KB. Inline code cannot be cached and inflates every HTML response.",
		FixEN:     "Move large inline scripts to external files that the browser can cache.",
	},
	"PERF_TOO_MANY_STYLESHEETS": {
		TitleEN:   "Too many stylesheets",
		MessageEN: "The page links %d stylesheets. Each one is a render-blocking request.",
		FixEN:     "Bundle the stylesheets and inline the critical CSS.",
	},
	"PERF_LEGACY_IMAGE_FORMATS": {
		TitleEN:   "Legacy image formats only",
		MessageEN: "Images use JPEG, PNG, GIF or BMP with no WebP/AVIF variant and no <picture> fallback.",
		FixEN:     "Serve WebP or AVIF images through <picture> with a legacy fallback.",
	},
	"PERF_HTML_TOO_LARGE": {
		TitleEN:   "Very large HTML document",
		MessageEN: "The rendered HTML weighs %dKB, above the 200KB threshold.",
		FixEN:     "Reduce the DOM size: paginate long lists, lazy-render hidden sections and remove inline data blobs.",
	},
	"PERF_HTML_LARGE": {
		TitleEN:   "Large HTML document",
		MessageEN: "The rendered HTML weighs %dKB, above the 100KB threshold.",
		FixEN:     "Trim unused markup and move inline styles and scripts to external files.",
	},
	"PERF_NO_PRECONNECT": {
		TitleEN:   "External domains without preconnect",
		MessageEN: "The page references %d external domains without any preconnect or dns-prefetch hint.",
		FixEN:     "Add <link rel=\"preconnect\"> for the most important third-party origins.",
	},

	// Design consistency
	"DESIGN_TOO_MANY_FONTS": {
		TitleEN:   "Too many font families",
		MessageEN: "%d distinct font-family values are used. A consistent design system usually needs two or three.",
		FixEN:     "Limit typography to a primary and a secondary family defined once as design tokens.",
	},
	"DESIGN_TOO_MANY_FONT_SIZES": {
		TitleEN:   "Too many font sizes",
		MessageEN: "%d distinct font-size values are used, which suggests the absence of a typographic scale.",
		FixEN:     "Define a typographic scale (for example 12/14/16/20/24/32) and reuse it everywhere.",
	},
	"DESIGN_TOO_MANY_COLORS": {
		TitleEN:   "Too many colors",
		MessageEN: "%d distinct colors are declared across color, background and border properties.",
		FixEN:     "Consolidate the palette into a limited set of color tokens.",
	},
	"DESIGN_TOO_MANY_SPACINGS": {
		TitleEN:   "Inconsistent spacing",
		MessageEN: "%d distinct margin/padding values are used.",
		FixEN:     "Adopt a spacing scale (for example multiples of 4px or 8px).",
	},
	"DESIGN_TOO_MANY_RADII": {
		TitleEN:   "Too many border radii",
		MessageEN: "%d distinct border-radius values are used.",
		FixEN:     "Reduce corner radii to a few tokens (small, medium, large, pill).",
	},
	"DESIGN_TOO_MANY_SHADOWS": {
		TitleEN:   "Too many box shadows",
		MessageEN: "%d distinct box-shadow values are used.",
		FixEN:     "Define a small elevation scale and reuse it.",
	},
	"DESIGN_NO_CSS_VARIABLES": {
		TitleEN:   "No CSS custom properties",
		MessageEN: "The page uses %d colors but declares no CSS custom properties, so design values are duplicated by hand.",
		FixEN:     "Declare design tokens as CSS custom properties in :root and reference them with var().",
	},

	// Forms
	"FORM_PLACEHOLDER_AS_LABEL": {
		TitleEN:   "Placeholder used as label",
		MessageEN: "A field relies on its placeholder instead of a real label. The placeholder disappears while typing and is not reliably announced.",
		FixEN:     "Add a visible <label> associated with the field. The placeholder may complement the label but must not replace it.",
	},
	"FORM_EMAIL_TYPE_MISSING": {
		TitleEN:   "Email field without type=\"email\"",
		MessageEN: "A field that seems to capture an email address does not use type=\"email\". Mobile users do not get the adapted keyboard.",
		FixEN:     "Use <input type=\"email\"> to enable native validation and the optimized mobile keyboard.",
	},
	"FORM_TEL_TYPE_MISSING": {
		TitleEN:   "Phone field without type=\"tel\"",
		MessageEN: "A field that seems to capture a phone number does not use type=\"tel\". The numeric keypad is not shown on mobile.",
		FixEN:     "Use <input type=\"tel\"> to enable the numeric keypad on mobile.",
	},
	"FORM_AUTOCOMPLETE_MISSING": {
		TitleEN:   "Missing autocomplete attribute",
		MessageEN: "%d field(s) have no autocomplete attribute. Browsers cannot fill them in automatically.",
		FixEN:     "Add the matching autocomplete token (name, email, tel, street-address...) to each field.",
	},
	"FORM_SUBMIT_MISSING": {
		TitleEN:   "Missing submit button",
		MessageEN: "The form has no visible submit control. Users cannot tell how to send it.",
		FixEN:     "Add a clearly labelled <button type=\"submit\">.",
	},
	"FORM_REQUIRED_MISSING": {
		TitleEN:   "No required field indicated",
		MessageEN: "The form marks no field as required. Users cannot tell which fields are mandatory.",
		FixEN:     "Use the required attribute on mandatory fields and add a visual marker such as an asterisk.",
	},
	"FORM_FIELDSET_MISSING": {
		TitleEN:   "Long form without fieldset",
		MessageEN: "The form contains %d visible fields without <fieldset> grouping, which makes it hard to scan.",
		FixEN:     "Group related fields in <fieldset> elements with a descriptive <legend>.",
	},

	// Content
	"CONTENT_EMPTY_HEADINGS": {
		TitleEN:   "Empty headings detected",
		MessageEN: "%d heading element(s) contain no text. They create noise in the document outline.",
		FixEN:     "Remove empty headings or give them meaningful text.",
	},
	"CONTENT_LONG_PARAGRAPHS": {
		TitleEN:   "Paragraphs too long",
		MessageEN: "%d paragraph(s) exceed 500 characters. Long blocks of text reduce readability, especially on mobile.",
		FixEN:     "Split long paragraphs into shorter ones, and use lists and subheadings.",
	},
	"CONTENT_META_DESCRIPTION_MISSING": {
		TitleEN:   "Missing meta description",
		MessageEN: "The page has no meta description summarising its content.",
		FixEN:     "Add a concise meta description of 120 to 160 characters.",
	},
	"CONTENT_META_DESCRIPTION_SHORT": {
		TitleEN:   "Meta description too short",
		MessageEN: "The meta description is only %d characters long.",
		FixEN:     "Expand the meta description to roughly 120 to 160 characters.",
	},
	"CONTENT_META_DESCRIPTION_LONG": {
		TitleEN:   "Meta description too long",
		MessageEN: "The meta description is %d characters long and will be truncated in search results.",
		FixEN:     "Shorten the meta description to 160 characters or fewer.",
	},
	"CONTENT_GENERIC_LINK_TEXT": {
		TitleEN:   "Non-descriptive link texts",
		MessageEN: "%d link(s) use generic text such as \"click here\" or \"read more\". Out of context they do not describe their target.",
		FixEN:     "Use link texts that describe the destination, for example \"Download the 2024 annual report\".",
	},
	"CONTENT_LONG_SENTENCES": {
		TitleEN:   "Sentences too long on average",
		MessageEN: "Sentences average %d words. Long sentences are harder to read and understand.",
		FixEN:     "Aim for sentences of 15 to 20 words.",
	},
	"CONTENT_LOW_TEXT_DENSITY": {
		TitleEN:   "Low text density",
		MessageEN: "Visible text makes up only %d%% of the HTML. The page is dominated by markup.",
		FixEN:     "Add meaningful text content or reduce markup overhead.",
	},

	// SEO
	"SEO_NOT_HTTPS": {
		TitleEN:   "Page not served over HTTPS",
		MessageEN: "The page is served over plain HTTP. Search engines favour secure pages and browsers flag HTTP as not secure.",
		FixEN:     "Install a TLS certificate and redirect all HTTP traffic to HTTPS.",
	},
	"SEO_TITLE_MISSING": {
		TitleEN:   "Missing <title> tag",
		MessageEN: "The page has no title. It is the main text shown in search results and browser tabs.",
		FixEN:     "Add a unique, descriptive <title> of 30 to 60 characters.",
	},
	"SEO_TITLE_SHORT": {
		TitleEN:   "Title too short",
		MessageEN: "The title is only %d characters long.",
		FixEN:     "Use a descriptive title of 30 to 60 characters that includes the main keyword.",
	},
	"SEO_TITLE_LONG": {
		TitleEN:   "Title too long",
		MessageEN: "The title is %d characters long and will be truncated in search results.",
		FixEN:     "Shorten the title to 60 characters or fewer.",
	},
	"SEO_META_DESCRIPTION_MISSING": {
		TitleEN:   "Meta description absent",
		MessageEN: "Without a meta description, search engines generate a snippet from arbitrary page content.",
		FixEN:     "Add a <meta name=\"description\"> that summarises the page.",
	},
	"SEO_OPEN_GRAPH_INCOMPLETE": {
		TitleEN:   "Incomplete Open Graph tags",
		MessageEN: "Missing Open Graph tags: %s. Shared links will render poorly on social networks.",
		FixEN:     "Add og:title, og:description, og:image and og:url meta tags.",
	},
	"SEO_TWITTER_CARD_MISSING": {
		TitleEN:   "Missing Twitter Card",
		MessageEN: "No twitter:card meta tag was found.",
		FixEN:     "Add <meta name=\"twitter:card\" content=\"summary_large_image\">.",
	},
	"SEO_CANONICAL_MISSING": {
		TitleEN:   "Missing canonical URL",
		MessageEN: "The page declares no canonical URL, which risks duplicate-content dilution.",
		FixEN:     "Add a <link rel=\"canonical\"> pointing at the preferred URL of the page.",
	},
	"SEO_STRUCTURED_DATA_MISSING": {
		TitleEN:   "No structured data",
		MessageEN: "Neither JSON-LD nor microdata was found. Rich results cannot be generated for this page.",
		FixEN:     "Describe the page with schema.org JSON-LD (Organization, Article, Product, BreadcrumbList...).",
	},
	"SEO_NOINDEX": {
		TitleEN:   "Page marked noindex",
		MessageEN: "The robots meta tag contains noindex, so search engines will drop this page. This is often left over from staging.",
		FixEN:     "Remove noindex from the robots meta tag if the page should appear in search results.",
	},
	"SEO_IMG_MISSING_ALT": {
		TitleEN:   "Images without alt attribute (SEO)",
		MessageEN: "%d image(s) have no alt attribute. Search engines rely on alt text to understand images.",
		FixEN:     "Give every meaningful image a descriptive alt text.",
	},

	// Navigation
	"NAV_ELEMENT_MISSING": {
		TitleEN:   "Missing <nav> element",
		MessageEN: "The page has no <nav> element. The main navigation is not identified for users or crawlers.",
		FixEN:     "Wrap the main navigation in a <nav> element.",
	},
	"NAV_NO_INTERNAL_LINKS": {
		TitleEN:   "No internal links detected",
		MessageEN: "The page links to %d destination(s), none of them internal. Visitors have no path deeper into the site.",
		FixEN:     "Link to related pages of the site from the content, header and footer.",
	},
	"NAV_FEW_INTERNAL_LINKS": {
		TitleEN:   "Very few internal links",
		MessageEN: "Only %d internal link(s) were found on the page.",
		FixEN:     "Add contextual links to related pages to strengthen the site structure.",
	},
	"NAV_EMPTY_HREF": {
		TitleEN:   "Links with empty or \"#\" href",
		MessageEN: "%d link(s) point to \"#\" or nowhere. They are dead ends for users and crawlers.",
		FixEN:     "Point the links at real destinations, or use <button> for in-page actions.",
	},
	"NAV_BREADCRUMBS_MISSING": {
		TitleEN:   "Missing breadcrumbs",
		MessageEN: "No breadcrumb trail was found. Users cannot see where the page sits in the site hierarchy.",
		FixEN:     "Add a breadcrumb <nav aria-label=\"Breadcrumb\"> with BreadcrumbList structured data.",
	},
	"NAV_FOOTER_MISSING": {
		TitleEN:   "Missing <footer> element",
		MessageEN: "The page has no footer, a conventional place for secondary navigation and legal links.",
		FixEN:     "Add a <footer> with contact, legal and secondary navigation links.",
	},
	"NAV_FOOTER_NO_LINKS": {
		TitleEN:   "Footer without links",
		MessageEN: "The footer contains no links.",
		FixEN:     "Add useful links to the footer (contact, legal notice, sitemap).",
	},
	"NAV_SEARCH_MISSING": {
		TitleEN:   "No search feature",
		MessageEN: "No search input was found on the page.",
		FixEN:     "Provide a search field, especially on content-heavy sites.",
	},

	// Dark patterns
	"DARK_URGENCY": {
		TitleEN:   "Urgency indicators detected",
		MessageEN: "Elements creating artificial urgency were found (countdowns, \"limited offer\", \"only N left\"). They can pressure users into decisions.",
		FixEN:     "Make sure urgency messages reflect real constraints. Remove fake timers and artificial scarcity claims.",
	},
	"DARK_CONFIRMSHAMING": {
		TitleEN:   "Confirmshaming detected",
		MessageEN: "Refusal options are worded to make users feel guilty (for example \"No thanks, I prefer paying more\").",
		FixEN:     "Offer neutral refusal options such as \"No thanks\" or \"Close\".",
	},
	"DARK_HIDDEN_COSTS": {
		TitleEN:   "Hidden cost wording detected",
		MessageEN: "The page mentions additional or hidden fees. Users should know the total price from the start.",
		FixEN:     "Show the full price including every fee on the product page.",
	},
	"DARK_NEWSLETTER_POPUP": {
		TitleEN:   "Intrusive newsletter popup detected",
		MessageEN: "A newsletter modal or overlay was found in the markup. Intrusive popups disrupt the experience and can be penalised by search engines.",
		FixEN:     "Use inline sign-up forms or discreet banners, delay their display and make them easy to dismiss.",
	},
	"DARK_MISLEADING_BUTTONS": {
		TitleEN:   "Misleading buttons detected",
		MessageEN: "Close or refusal controls look like primary calls to action, or are unusually small or hidden.",
		FixEN:     "Make dismiss controls clearly distinct from primary actions, visible and easy to hit.",
	},
}

// uiMessages holds console and progress-log strings.
var uiMessages = map[string]string{
	"LogCrawlStart":           "Starting crawl...",
	"LogBrowserLaunch":        "Launching headless browser...",
	"LogScanPage":             "[%d/%d] Scanning: %s (depth %d)",
	"LogLinksFound":           "  -> %d internal links found",
	"LogPageError":            "  x Error: %s",
	"LogCrawlDone":            "Crawl finished: %d pages scanned",
	"LogAnalyzePages":         "Crawl finished. Analyzing %d pages...",
	"LogAnalyzePage":          "Analyzing page %d/%d: %s",
	"LogModuleStart":          "[%d/%d] Analyzing: %s...",
	"LogModuleDone":           "[%d/%d] %s done, score: %d/100 (%d issue(s))",
	"LogModuleError":          "[%d/%d] Error while analyzing %s: %s",
	"LogAuditDone":            "Audit finished! Score: %d/100, %d issues.",
	"LogAuditError":           "ERROR: %s",
	"SummaryError":            "Error: %s",
	"AuditCancelled":          "audit cancelled",
	"Target":                  "Target: %s",
	"AuditID":                 "Audit: %s",
	"ScanConfigLine":          "Pages: %d | Depth: %d | Delay: %dms | Viewports: %s",
	"StatusReady":             "Status: Ready",
	"StatusServer":            "Status endpoint listening on %s",
	"ScanCancelled":           "Audit cancelled.",
	"ConsoleNoIssues":         "[OK] No issues found",
	"ConsoleFindingsTitle":    "--- Issues ---",
	"ConsoleFixLabel":         "Fix",
	"ConsoleSelectorLabel":    "Selector",
	"ConsoleCriterionLabel":   "Criterion",
	"ConsoleScoresTitle":      "--- Scores ---",
	"ConsoleGlobalScore":      "Global score: %d/100 (%s)",
	"ConsolePagesTitle":       "--- Pages ---",
	"ConsoleAuditFailed":      "Audit failed: %s",
	"AuditCompleted":          "Audit completed in %.2fs",
	"JSONReportSaved":         "JSON Report saved: %s",
	"JSONReportFailed":        "Failed to save JSON report: %v",
}

func GetMessage(id string) MessageDetail {
	if msg, ok := issueMessages[id]; ok {
		title := msg.TitleEN
		if title == "" {
			title = id
		}
		return MessageDetail{
			Title:   title,
			Message: msg.MessageEN,
			Fix:     msg.FixEN,
		}
	}
	return MessageDetail{
		Title:   "Message Not Found",
		Message: fmt.Sprintf("Message details for ID '%s' not found.", id),
		Fix:     "Please check the message ID.",
	}
}

func GetUIMessage(id string, args ...interface{}) string {
	format, ok := uiMessages[id]
	if !ok || format == "" {
		return id
	}
	if len(args) > 0 {
		return fmt.Sprintf(format, args...)
	}
	return format
}
