package deadcode

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/panbanda/phprune/pkg/models"
)

func withContent(u *models.Unit, content string, imports ...string) *models.Unit {
	u.Content = content
	u.RawImports = imports
	return u
}

func inNamespace(u *models.Unit, ns string) *models.Unit {
	u.Namespace = ns
	return u
}

func TestHeuristicDetector_Alias(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    bool
	}{
		{
			name:    "alias only in import",
			content: "use App\\Services\\Mailer as Sender;\nclass Report {}",
			want:    false,
		},
		{
			name:    "alias used once more",
			content: "use App\\Services\\Mailer as Sender;\nclass Report { function f() { return new Sender(); } }",
			want:    true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mailer := inNamespace(classUnit("Mailer"), `App\Services`)
			report := withContent(classUnit("Report"), tt.content, `App\Services\Mailer`)
			report.Aliases[`App\Services\Mailer`] = "Sender"
			ix := NewIndex([]*models.Unit{mailer, report})

			assert.Equal(t, tt.want, NewHeuristicDetector(ix).References(report, mailer))
		})
	}
}

func TestHeuristicDetector_Import(t *testing.T) {
	tests := []struct {
		name     string
		referrer string
		content  string
		want     bool
	}{
		{"import only", "Invoice", "use App\\User;\nclass Invoice {}", false},
		{"import and use", "Invoice", "use App\\User;\nclass Invoice { public $u = User::class; }", true},
		{"own name contains target", "UserRepository", "use App\\User;\nclass UserRepository {}", false},
		{"own name contains target, used", "UserRepository", "use App\\User;\nclass UserRepository { function f() { return new User(); } }", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			user := classUnit("User")
			from := withContent(classUnit(tt.referrer), tt.content, `App\User`)
			ix := NewIndex([]*models.Unit{user, from})

			assert.Equal(t, tt.want, NewHeuristicDetector(ix).References(from, user))
		})
	}
}

func TestHeuristicDetector_SubstringGuard(t *testing.T) {
	user := classUnit("User")

	once := withContent(classUnit("UserRepository"), "class UserRepository {}")
	twice := withContent(classUnit("UserPolicy"), "class UserPolicy { function f(User $u) {} }")
	ix := NewIndex([]*models.Unit{user, once, twice})
	d := NewHeuristicDetector(ix)

	assert.False(t, d.References(once, user))
	assert.True(t, d.References(twice, user))
}

func TestHeuristicDetector_CollisionSuppressesFallback(t *testing.T) {
	order := inNamespace(classUnit("Order"), `App\Models`)
	line := classUnit("OrderLine")
	content := "use App\\Models\\Order;\nclass Invoice { function f() { return new OrderLine(); } }"

	plain := withContent(classUnit("Invoice"), content, `App\Models\Order`)
	ix := NewIndex([]*models.Unit{order, line, plain})
	d := NewHeuristicDetector(ix)
	assert.False(t, d.References(plain, line))
	// The imported class itself is still decided by its own count.
	assert.True(t, d.References(plain, order))

	aliased := withContent(classUnit("Invoice"), content, `App\Models\Order`)
	aliased.Aliases[`App\Models\Order`] = "Ord"
	ix = NewIndex([]*models.Unit{order, line, aliased})
	assert.True(t, NewHeuristicDetector(ix).References(aliased, line))
}

func TestHeuristicDetector_LongerImportDoesNotSuppress(t *testing.T) {
	order := classUnit("Order")
	line := inNamespace(classUnit("OrderLine"), `App\Models`)
	content := "use App\\Models\\OrderLine;\nclass Invoice { function f(Order $o) {} }"

	from := withContent(classUnit("Invoice"), content, `App\Models\OrderLine`)
	ix := NewIndex([]*models.Unit{order, line, from})

	assert.True(t, NewHeuristicDetector(ix).References(from, order))
}

func TestHeuristicDetector_UnknownImportsAreDropped(t *testing.T) {
	user := classUnit("User")
	from := withContent(classUnit("Invoice"), "use Vendor\\Lib\\UserFactory;\nclass Invoice { function f(User $u) {} }", `Vendor\Lib\UserFactory`)
	ix := NewIndex([]*models.Unit{user, from})

	assert.Empty(t, ix.Imports(from.ID))
	assert.True(t, NewHeuristicDetector(ix).References(from, user))
}

func TestHeuristicDetector_NonClassReferrer(t *testing.T) {
	user := classUnit("User")
	entry := withContent(entryUnit("index"), "<?php\n$u = new App\\User();\n")
	other := withContent(entryUnit("cron"), "<?php\necho 'tick';\n")
	ix := NewIndex([]*models.Unit{user, entry, other})
	d := NewHeuristicDetector(ix)

	assert.True(t, d.References(entry, user))
	assert.False(t, d.References(other, user))
}

func TestIndex_Duplicates(t *testing.T) {
	first := classUnit("User")
	first.Path = "app/User.php"
	second := classUnit("User")
	second.Path = "legacy/User.php"
	ix := NewIndex([]*models.Unit{first, second})

	got, ok := ix.Lookup(`App\User`)
	require.True(t, ok)
	assert.Same(t, first, got)
	assert.False(t, second.IsClass())
	assert.Len(t, ix.Classes(), 1)
	assert.Equal(t, []Duplicate{{
		QualifiedName: `App\User`,
		Canonical:     "app/User.php",
		Demoted:       []string{"legacy/User.php"},
	}}, ix.Duplicates())
}

func TestIndex_ImportsAreMemoized(t *testing.T) {
	user := classUnit("User")
	from := withContent(classUnit("Invoice"), "", `App\User`)
	ix := NewIndex([]*models.Unit{user, from})

	first := ix.Imports(from.ID)
	require.Len(t, first, 1)
	from.RawImports = nil
	assert.Equal(t, first, ix.Imports(from.ID))
}

func TestBuildGraph(t *testing.T) {
	user := withContent(classUnit("User"), "class User {}")
	invoice := withContent(classUnit("Invoice"), "class Invoice { function f(User $u) {} }")
	entry := withContent(entryUnit("index"), "new App\\Invoice();")
	ix := NewIndex([]*models.Unit{user, invoice, entry})

	edges := BuildGraph(ix, NewHeuristicDetector(ix))

	assert.Equal(t, 2, edges)
	assert.Equal(t, []int{invoice.ID}, user.CallerIDs())
	assert.Equal(t, []int{entry.ID}, invoice.CallerIDs())
	assert.Equal(t, []int{user.ID}, invoice.CalledIDs())
	assert.Empty(t, entry.CallerIDs())
}
