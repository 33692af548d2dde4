// Copyright (c) 2026 Yomikata. All rights reserved.

package archive

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

/*
TestStripHTML_Simple checks plain tag removal.
*/
func TestStripHTML_Simple(t *testing.T) {
	got := stripHTML("<p>Hello, <b>world</b>!</p>")
	assert.Equal(t, "Hello, world!", got)
}

/*
TestStripHTML_Entities checks the literal entity decode set and order.
*/
func TestStripHTML_Entities(t *testing.T) {
	got := stripHTML("<p>Hello &amp; goodbye &lt;world&gt;</p>")
	assert.Equal(t, "Hello & goodbye <world>", got)
}

/*
TestStripHTML_ScriptAndStyle checks that script/style bodies are dropped
along with their tags, not just the tags themselves.
*/
func TestStripHTML_ScriptAndStyle(t *testing.T) {
	got := stripHTML("<p>Before</p><script>alert('hi');</script><p>After</p>")
	assert.Equal(t, "BeforeAfter", got)

	got = stripHTML("<style>body{color:red}</style><p>Text</p>")
	assert.Equal(t, "Text", got)
}

/*
TestStripHTML_LineEndings checks CRLF/CR normalization and trimming.
*/
func TestStripHTML_LineEndings(t *testing.T) {
	got := stripHTML("  Hello\r\nWorld\r  ")
	assert.Equal(t, "Hello\nWorld", got)
}
