package fancy

import (
	"fmt"
	"strings"

	"github.com/atlanticdynamic/hostbridge/internal/members"
	"github.com/atlanticdynamic/hostbridge/internal/shutter"
)

// MemberTree renders a resolved member set grouped by kind. Empty groups are omitted.
func MemberTree(set *members.Set) *ComponentTree {
	title := RootStyle.Render(shutter.TypeName(set.Owner()))
	t := NewComponentTree(title)

	if fields := set.Fields(); len(fields) > 0 {
		branch := BranchNode("Fields", count(len(fields)))
		for _, f := range fields {
			branch.Child(fmt.Sprintf("%s %s %s %s",
				FieldText(f.Name()), f.ValueType(), f.Access(), SummaryText(flags(f.Options()))))
		}
		t.AddChild(branch)
	}

	if functions := set.Functions(); len(functions) > 0 {
		branch := BranchNode("Functions", count(len(functions)))
		for _, fn := range functions {
			branch.Child(fmt.Sprintf("%s %s %s",
				FunctionText(fn.Name()), fn.Method(), SummaryText(flags(fn.Options()))))
		}
		t.AddChild(branch)
	}

	if getter, ok := set.ObjectGetter(); ok {
		t.AddChild(BranchNode("Object getter", "").Child(FunctionText(getter.Method().Name)))
	}

	if ctors := set.Constructors(); len(ctors) > 0 {
		branch := BranchNode("Constructors", count(len(ctors)))
		for _, c := range ctors {
			branch.Child(ConstructorText(c.GoName()) + " " +
				strings.TrimPrefix(c.Signature(), "constructor "))
		}
		t.AddChild(branch)
	}

	if set.Empty() {
		t.AddChild(InfoStyle.Render("no script-visible members"))
	}
	return t
}

// EngineTree renders MIME types grouped by engine name.
func EngineTree(byEngine map[string][]string, order []string) *ComponentTree {
	t := NewComponentTree(RootStyle.Render("Script engines"))
	for _, name := range order {
		types := byEngine[name]
		branch := BranchNode(name, count(len(types)))
		for _, m := range types {
			branch.Child(MIMEText(m))
		}
		t.AddChild(branch)
	}
	return t
}

func count(n int) string {
	return CountText(fmt.Sprintf("(%d)", n))
}

func flags(o members.Options) string {
	return "[" + o.String() + "]"
}
