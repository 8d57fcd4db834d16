package xmlparse

import "strings"

// listPrefix marks a repeated field's tag name on the wire (spec §4.3,
// §6.4).
const listPrefix = "_list_"

// anonymousName wraps primitive values inside a list, and is itself
// excluded from both event emission and the recursion counter (spec §3,
// §4.3).
const anonymousName = "anonymous"

// closeTagName renders the wire-level close tag name for error messages,
// restoring the "_list_" prefix a list element's tag carried.
func (f elementFrame) closeTagName() string {
	if f.isList {
		return listPrefix + f.name
	}
	return f.name
}

// openElement applies spec §4.3's opening rules for a just-lexed tag name,
// pushing the appropriate tag-stack/element-kind-stack entry and emitting
// the corresponding start event. snippetPos anchors MESSAGE_TOO_DEEP's
// location context at the tag name just consumed.
func (p *Parser) openElement(tag string, snippetPos int) error {
	parentIsList := len(p.tags) > 0 && p.tags[len(p.tags)-1].kind == elementList

	switch {
	case strings.HasPrefix(tag, listPrefix):
		name := tag[len(listPrefix):]
		if err := p.sink.StartList(name); err != nil {
			return err
		}
		p.tags = append(p.tags, elementFrame{name: name, isList: true, kind: elementList})
		return nil

	case tag == anonymousName:
		p.tags = append(p.tags, elementFrame{name: anonymousName, kind: elementObject, anonymous: true})
		return nil

	default:
		p.depth++
		if p.depth > p.opts.maxDepth() {
			p.depth--
			snippet, caret := snippetAround(p.cur.buf, snippetPos)
			return newError(KindMessageTooDeep, snippet, caret,
				"Message too deep. Max recursion depth reached for tag '%s'.", tag)
		}
		emitName := tag
		if tag == "root" || parentIsList {
			emitName = ""
		}
		if err := p.sink.StartObject(emitName); err != nil {
			p.depth--
			return err
		}
		p.tags = append(p.tags, elementFrame{name: tag, kind: elementObject})
		return nil
	}
}

// closeElement applies spec §4.3's closing rules for a just-lexed close
// tag name, validating it against the tag stack's top (TAG_NAME_NOT_MATCH
// on mismatch), popping both stacks, and emitting the corresponding end
// event.
func (p *Parser) closeElement(closeTag string, snippetPos int) error {
	top := p.tags[len(p.tags)-1]

	isList := strings.HasPrefix(closeTag, listPrefix)
	name := closeTag
	if isList {
		name = closeTag[len(listPrefix):]
	}
	if name != top.name || isList != top.isList {
		snippet, caret := snippetAround(p.cur.buf, snippetPos)
		return newError(KindTagNameNotMatch, snippet, caret,
			"Tag name mismatch: expected closing tag for '%s' but found '%s'.",
			top.closeTagName(), closeTag)
	}

	p.tags = p.tags[:len(p.tags)-1]

	switch {
	case isList:
		return p.sink.EndList()
	case top.anonymous:
		return nil
	default:
		p.depth--
		return p.sink.EndObject()
	}
}
