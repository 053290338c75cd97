package wiki

// Months lists the twelve canonical English month names in calendar order.
// Only these names are valid bucket keys; any other section heading on a
// year page ("See also", "Births", ...) is ignored.
var Months = []string{
	"January", "February", "March", "April", "May", "June",
	"July", "August", "September", "October", "November", "December",
}

var monthSet = func() map[string]bool {
	set := make(map[string]bool, len(Months))
	for _, m := range Months {
		set[m] = true
	}
	return set
}()

// IsMonth reports whether name is one of the canonical month names.
// Matching is exact; "january" or "Jan" do not count.
func IsMonth(name string) bool {
	return monthSet[name]
}
