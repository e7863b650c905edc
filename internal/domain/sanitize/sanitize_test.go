package sanitize_test

import (
	"strings"
	"testing"

	"github.com/acmx/sheetboard/internal/domain/sanitize"
	. "github.com/smartystreets/goconvey/convey"
)

func TestName(t *testing.T) {
	Convey("Given team names with mixed content", t, func() {
		Convey("Then letters survive, lowercased", func() {
			So(sanitize.Name("Flying Felines"), ShouldEqual, "flyingfelines")
			So(sanitize.Name("Team-42!"), ShouldEqual, "team")
			So(sanitize.Name("  ABC  "), ShouldEqual, "abc")
		})

		Convey("And everything else is stripped", func() {
			So(sanitize.Name("123 456"), ShouldEqual, "")
			So(sanitize.Name(""), ShouldEqual, "")
		})
	})
}

func TestFlag(t *testing.T) {
	Convey("Given submitted flags", t, func() {
		Convey("Then letters, digits, braces and underscores survive", func() {
			So(sanitize.Flag("flag{h4ck_th3_pl4net}"), ShouldEqual, "flag{h4ck_th3_pl4net}")
		})

		Convey("And shell metacharacters are stripped", func() {
			So(sanitize.Flag("flag{x}; rm -rf /"), ShouldEqual, "flag{x}rmrf")
			So(sanitize.Flag("  spaced out  "), ShouldEqual, "spacedout")
		})
	})
}

func TestNameLength(t *testing.T) {
	Convey("Given the [2,32] bounds", t, func() {
		So(sanitize.NameLength("ab", 2, 32), ShouldBeTrue)
		So(sanitize.NameLength("a", 2, 32), ShouldBeFalse)
		So(sanitize.NameLength("  a  ", 2, 32), ShouldBeFalse)
		So(sanitize.NameLength(strings.Repeat("x", 32), 2, 32), ShouldBeTrue)
		So(sanitize.NameLength(strings.Repeat("x", 33), 2, 32), ShouldBeFalse)
	})
}
