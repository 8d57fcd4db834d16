package xmlwrite

// Options holds writer configuration, mirroring xmlparse.Options's
// functional-constructor-plus-JoinOptions shape (spec §6.3).
type Options struct {
	addWhitespace bool

	addWhitespaceSet bool
}

// JoinOptions combines option sets in declaration order; later sets
// override earlier ones field-by-field, wherever the later set explicitly
// set that field.
func JoinOptions(srcs ...Options) Options {
	var merged Options
	for _, src := range srcs {
		merged.merge(src)
	}
	return merged
}

func (o *Options) merge(src Options) {
	if src.addWhitespaceSet {
		o.addWhitespace = src.addWhitespace
		o.addWhitespaceSet = true
	}
}

// AddWhitespace enables newline-plus-single-space-per-depth indentation
// (spec §6.3's add_whitespace).
func AddWhitespace(value bool) Options {
	return Options{addWhitespace: value, addWhitespaceSet: true}
}
