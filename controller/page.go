package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ChatPage serves the built-in single-page chat client at GET /.
func (c *RAGController) ChatPage(ctx *gin.Context) {
	ctx.Data(http.StatusOK, "text/html; charset=utf-8", []byte(chatPageHTML))
}

const chatPageHTML = `<!doctype html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>NDIS Assistant</title>
<style>
  body { font-family: system-ui, sans-serif; margin: 0; background: #f4f5f7; color: #1f2430; }
  .wrap { max-width: 760px; margin: 0 auto; padding: 16px; display: flex; flex-direction: column; height: 100vh; box-sizing: border-box; }
  h1 { font-size: 1.2rem; margin: 8px 0 16px; }
  #chat { flex: 1; overflow-y: auto; display: flex; flex-direction: column; gap: 12px; padding-bottom: 12px; }
  .msg { max-width: 85%; padding: 10px 14px; border-radius: 10px; line-height: 1.45; }
  .user { align-self: flex-end; background: #2457d6; color: #fff; }
  .bot { align-self: flex-start; background: #fff; border: 1px solid #dde1e7; }
  .bot ul, .bot ol { padding-left: 20px; }
  form { display: flex; gap: 8px; padding-top: 8px; border-top: 1px solid #dde1e7; }
  input { flex: 1; padding: 10px 12px; border: 1px solid #c5cbd4; border-radius: 8px; font-size: 1rem; }
  button { padding: 10px 18px; border: 0; border-radius: 8px; background: #2457d6; color: #fff; font-size: 1rem; cursor: pointer; }
  button:disabled { opacity: 0.6; cursor: wait; }
</style>
</head>
<body>
<div class="wrap">
  <h1>NDIS Assistant</h1>
  <div id="chat"></div>
  <form id="ask">
    <input id="query" autocomplete="off" placeholder="Ask about plans, supports, services..." required>
    <button id="send" type="submit">Send</button>
  </form>
</div>
<script>
const chat = document.getElementById("chat");
const form = document.getElementById("ask");
const input = document.getElementById("query");
const send = document.getElementById("send");

function addMessage(cls, html) {
  const div = document.createElement("div");
  div.className = "msg " + cls;
  if (cls === "bot") { div.innerHTML = html; } else { div.textContent = html; }
  chat.appendChild(div);
  chat.scrollTop = chat.scrollHeight;
  return div;
}

form.addEventListener("submit", async (e) => {
  e.preventDefault();
  const query = input.value.trim();
  if (!query) return;
  addMessage("user", query);
  input.value = "";
  send.disabled = true;
  const thinking = addMessage("bot", "&hellip;");
  try {
    const res = await fetch("/api/v1/plan", {
      method: "POST",
      headers: { "Content-Type": "application/json" },
      body: JSON.stringify({ query })
    });
    const data = await res.json();
    if (!res.ok) {
      thinking.textContent = data.error || "Something went wrong.";
    } else {
      thinking.innerHTML = data.answer_html || data.answer;
    }
  } catch (err) {
    thinking.textContent = "Could not reach the server.";
  } finally {
    send.disabled = false;
    input.focus();
  }
});
</script>
</body>
</html>
`
