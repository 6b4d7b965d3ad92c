package deadcode

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/panbanda/phprune/pkg/models"
	"github.com/panbanda/phprune/pkg/parser"
)

func parse(path, src string) *models.Unit {
	return parser.Parse(0, path, src, false, parser.Options{})
}

func parseEntry(path, src string) *models.Unit {
	return parser.Parse(0, path, src, true, parser.Options{})
}

func names(units []*models.Unit) []string {
	out := make([]string, len(units))
	for i, u := range units {
		out[i] = u.QualifiedName()
	}
	return out
}

func methodNames(methods []*models.Method) []string {
	out := make([]string, len(methods))
	for i, m := range methods {
		out[i] = m.Name
	}
	return out
}

func TestNew(t *testing.T) {
	a := New()
	require.NotNil(t, a)
	assert.NotNil(t, a.detector)
	assert.NotNil(t, a.logger)
}

func TestNewWithOptions(t *testing.T) {
	a := New(
		WithIgnored([]string{`App\Http\`}),
		WithIgnoredFunc([]string{`App\Legacy\`}),
		WithIgnoredFuncNames([]string{"handle"}),
	)

	assert.Equal(t, []string{`App\Http\`}, a.ignored)
	assert.Equal(t, []string{`App\Legacy\`}, a.ignoredFunc)
	assert.Equal(t, []string{"handle"}, a.ignoredFuncNames)
}

func TestAnalyze_EntrypointReachesImportedClass(t *testing.T) {
	entry := parseEntry("public/index.php", `<?php
require __DIR__.'/../vendor/autoload.php';
echo (new App\Invoice())->total();
`)
	invoice := parse("app/Invoice.php", `<?php
namespace App;

use App\Mailer;

class Invoice
{
    public function total()
    {
        return (new Mailer())->send();
    }
}
`)
	mailer := parse("app/Mailer.php", `<?php
namespace App;

class Mailer
{
    public function send()
    {
        return true;
    }
}
`)

	r := New().Analyze([]*models.Unit{entry, invoice, mailer})

	assert.True(t, r.IsUsed(invoice))
	assert.True(t, r.IsUsed(mailer))
	assert.Equal(t, []string{`App\Invoice`, `App\Mailer`}, names(r.Used))
	assert.Empty(t, r.Unused)
	assert.Empty(t, r.InvalidRoots)
	assert.Equal(t, 2, r.Edges)
}

func TestAnalyze_MutualReferencesFormUnreachableBranch(t *testing.T) {
	entry := parseEntry("public/index.php", "<?php\necho 'hello';\n")
	cart := parse("app/Cart.php", `<?php
namespace App;

class Cart
{
    public function apply(Coupon $c)
    {
        return $c;
    }
}
`)
	coupon := parse("app/Coupon.php", `<?php
namespace App;

class Coupon
{
    public function target(Cart $c)
    {
        return $c;
    }
}
`)

	r := New().Analyze([]*models.Unit{entry, cart, coupon})

	assert.False(t, r.IsUsed(cart))
	assert.False(t, r.IsUsed(coupon))
	assert.Equal(t, []string{`App\Cart`, `App\Coupon`}, names(r.InvalidRoots))
	assert.Equal(t, []string{`App\Cart`, `App\Coupon`}, names(r.LiveRoots))
	require.Len(t, r.Cycles(), 1)
	assert.Equal(t, []string{`App\Cart`, `App\Coupon`}, names(r.Cycles()[0]))
}

func TestAnalyze_CycleReachedFromOutsideIsNotRoot(t *testing.T) {
	a, b, c := classUnit("A"), classUnit("B"), classUnit("C")
	r := New(WithDetector(func(ix *Index) ReferenceDetector {
		return edgeSet{{a, b}, {b, a}, {c, a}}
	})).Analyze([]*models.Unit{a, b, c})

	assert.Equal(t, []string{`App\C`}, names(r.InvalidRoots))
	require.Len(t, r.Cycles(), 1)
}

func TestAnalyze_DeprecatedRoots(t *testing.T) {
	old := parse("app/Old.php", `<?php
namespace App;

/**
 * @deprecated use the new exporter
 */
class Old
{
    public function run()
    {
        return new Helper();
    }
}
`)
	helper := parse("app/Helper.php", `<?php
namespace App;

class Helper
{
}
`)

	r := New().Analyze([]*models.Unit{old, helper})

	assert.Equal(t, []string{`App\Old`}, names(r.Roots(true)))
	assert.Equal(t, []string{`App\Helper`}, names(r.Roots(false)))
	assert.Equal(t, []string{`App\Old`, `App\Helper`}, names(r.Unused))
}

func TestAnalyze_IgnoredUnitsKeepCalleesAlive(t *testing.T) {
	kernel := parse("app/Http/Kernel.php", `<?php
namespace App\Http;

class Kernel
{
    protected $middleware = [\App\Http\TrustProxies::class];
}
`)
	proxies := parse("app/Http/TrustProxies.php", `<?php
namespace App\Http;

class TrustProxies
{
}
`)

	r := New(WithIgnored([]string{`App\Http\Kernel`})).Analyze([]*models.Unit{kernel, proxies})

	assert.True(t, r.IsUsed(kernel))
	assert.True(t, r.IsUsed(proxies))
	assert.Empty(t, r.InvalidRoots)
}

func TestAnalyze_DuplicatesAreDemoted(t *testing.T) {
	src := "<?php\nnamespace App;\n\nclass User\n{\n}\n"
	first := parse("app/User.php", src)
	second := parse("legacy/User.php", src)

	r := New().Analyze([]*models.Unit{first, second})

	require.Len(t, r.Duplicates, 1)
	assert.Equal(t, "legacy/User.php", r.Duplicates[0].Demoted[0])
	assert.False(t, second.IsClass())
	// The demoted copy still mentions User, so the canonical unit has a caller.
	assert.True(t, r.IsUsed(first))
}

const invoiceMethods = `<?php
namespace App;

class Invoice
{
    public function total()
    {
        return $this->helper();
    }

    private function helper()
    {
        return 1;
    }

    public function render()
    {
        return '';
    }

    /**
     * @deprecated
     */
    public function legacy()
    {
        return $this->total();
    }
}
`

func TestAnalyze_UnusedMethods(t *testing.T) {
	entry := parseEntry("public/index.php", "<?php\necho (new App\\Invoice())->total();\n")
	invoice := parse("app/Invoice.php", invoiceMethods)

	r := New().Analyze([]*models.Unit{entry, invoice})

	require.True(t, r.IsUsed(invoice))
	assert.Equal(t, []string{"render", "legacy"}, methodNames(r.UnusedMethods))
	assert.Equal(t, []string{"render", "legacy"}, methodNames(r.UnusedMethodsOf(invoice)))
	assert.Equal(t, 8, r.UnusedMethodLines)
	assert.Contains(t, invoice.Method("total").CallerIDs(), entry.ID)
}

func TestAnalyze_AlwaysUsedMethodNames(t *testing.T) {
	entry := parseEntry("public/index.php", "<?php\necho (new App\\Invoice())->total();\n")
	invoice := parse("app/Invoice.php", invoiceMethods)

	r := New(WithIgnoredFuncNames([]string{"render", "legacy"})).Analyze([]*models.Unit{entry, invoice})

	assert.Empty(t, r.UnusedMethods)
}

func TestAnalyze_IgnoredFuncPrefixSkipsReporting(t *testing.T) {
	entry := parseEntry("public/index.php", "<?php\necho (new App\\Invoice())->total();\n")
	invoice := parse("app/Invoice.php", invoiceMethods)

	r := New(WithIgnoredFunc([]string{`App\Inv`})).Analyze([]*models.Unit{entry, invoice})

	assert.True(t, r.IsUsed(invoice))
	assert.Empty(t, r.UnusedMethods)
}

func TestAnalyze_ReflexiveCallKeepsMethods(t *testing.T) {
	entry := parseEntry("public/index.php", "<?php\n(new App\\Router())->dispatch('home');\n")
	router := parse("app/Router.php", `<?php
namespace App;

class Router
{
    public function dispatch($action)
    {
        return $this->$action();
    }

    public function home()
    {
        return 'home';
    }
}
`)

	r := New().Analyze([]*models.Unit{entry, router})

	assert.True(t, router.ReflexiveCall)
	assert.Empty(t, r.UnusedMethods)
}

func TestAnalyze_UnusedClassesHaveNoMethodFindings(t *testing.T) {
	invoice := parse("app/Invoice.php", invoiceMethods)

	r := New().Analyze([]*models.Unit{invoice})

	assert.False(t, r.IsUsed(invoice))
	assert.Empty(t, r.UnusedMethods)
	assert.Nil(t, r.UnusedMethodsOf(invoice))
}

// edgeSet is a detector over a fixed list of from -> to pairs.
type edgeSet [][2]*models.Unit

func (s edgeSet) References(from, to *models.Unit) bool {
	for _, e := range s {
		if e[0] == from && e[1] == to {
			return true
		}
	}
	return false
}
