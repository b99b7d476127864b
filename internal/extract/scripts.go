package extract

const baseURIScript = `() => document.baseURI || window.location.href`

const bodyTextScript = `() => (document.body ? document.body.innerText : "")`

const jsonLDScript = `() => Array.from(
  document.querySelectorAll('script[type="application/ld+json"]')
).map((s) => s.textContent || "")`

// domScript walks the selector list in order and returns the cards of the first
// selector that matches anything.
const domScript = `(opts) => {
  const text = (root, sels) => {
    for (const sel of sels) {
      const el = root.querySelector(sel);
      const value = el && el.textContent ? el.textContent.trim() : "";
      if (value) return value;
    }
    return "";
  };
  const link = (root, sels) => {
    if (root.tagName === "A" && root.getAttribute("href")) return root.getAttribute("href");
    for (const sel of sels) {
      const el = root.querySelector(sel);
      if (el && el.getAttribute("href")) return el.getAttribute("href");
    }
    return "";
  };
  for (const selector of opts.selectors) {
    const nodes = Array.from(document.querySelectorAll(selector));
    if (nodes.length === 0) continue;
    return {
      selector,
      items: nodes.map((node) => ({
        title: text(node, opts.title),
        location: text(node, opts.location),
        department: text(node, opts.department),
        href: link(node, opts.link),
      })),
    };
  }
  return { selector: "", items: [] };
}`
