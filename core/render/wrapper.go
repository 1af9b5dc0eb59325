package render

import "strings"

const (
	// ContainerID is the id of the element MathJax typesets.
	ContainerID = "wrapper"
	// ReadySignal is written to window.status once typesetting completes.
	// wkhtmltopdf waits for it via --window-status.
	ReadySignal = "onloadready"
	// MathJaxURL is the MathJax 2 bundle loaded by the wrapper page.
	MathJaxURL = "https://cdn.staticfile.org/mathjax/2.7.1/MathJax.js?config=TeX-AMS-MML_HTMLorMML"
)

const documentHead = `<!DOCTYPE html>
<html lang="zh-CN">
<head>
  <meta charset="UTF-8" />
  <title>MathJax PDF</title>
  <style>
    html, body {
      font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, "Helvetica Neue", Arial, "Noto Sans",
                   "Liberation Sans", sans-serif, "Apple Color Emoji", "Segoe UI Emoji", "Segoe UI Symbol",
                   "Noto Color Emoji";
      font-size: 30px;
      line-height: 1.6;
      margin: 30px;
    }

    p {
      font-size: 30px;
      margin: 0 0 0.8em 0;
    }

    h1 { font-size: 34px; }
    h2 { font-size: 30px; }
    h3 { font-size: 26px; }

    table {
      border-collapse: collapse;
      width: 100%;
      font-size: 30px;
    }

    th, td {
      border: 1px solid #ccc;
      padding: 4px 8px;
    }

    code, pre {
      font-family: Consolas, "Courier New", monospace;
      font-size: 24px;
    }
  </style>
</head>
<body>
  <div id="` + ContainerID + `">
    `

// The bootstrap stays ES5; wkhtmltopdf ships an old WebKit.
const documentTail = `
  </div>

  <script type="text/javascript">
    var el = document.createElement("script");
    el.setAttribute("id", "MathJax-script");
    el.src = "` + MathJaxURL + `";
    document.body.appendChild(el);

    if (el.readyState) {
      el.onreadystatechange = function () {
        if (el.readyState === "complete" || el.readyState === "loaded") {
          el.onreadystatechange = null;
          mathjaxConfig();
        }
      };
    } else {
      el.onload = function () {
        mathjaxConfig();
      };
    }

    function mathjaxConfig() {
      if (window.MathJax) {
        window.MathJax.Hub.Config({
          extensions: ["tex2jax.js"],
          jax: ["input/TeX", "output/HTML-CSS"],
          tex2jax: {
            inlineMath: [["\\(", "\\)"]],
            displayMath: [
              ["$$", "$$"],
              ["\\[", "\\]"],
            ],
            processEscapes: true,
          },
          "HTML-CSS": {
            availableFonts: ["TeX"],
            preferredFont: "TeX",
            minScaleAdjust: 100,
          },
        });

        window.MathJax.Hub.Queue([
          "Typeset",
          MathJax.Hub,
          document.getElementById("` + ContainerID + `"),
          function () {
            window.status = "` + ReadySignal + `";
          },
        ]);
      }
    }
  </script>
</body>
</html>
`

// WrapForRendering embeds inner verbatim in a standalone page that loads
// MathJax, typesets the container and then raises ReadySignal.
func WrapForRendering(inner string) string {
	var b strings.Builder
	b.Grow(len(documentHead) + len(inner) + len(documentTail))
	b.WriteString(documentHead)
	b.WriteString(inner)
	b.WriteString(documentTail)
	return b.String()
}
