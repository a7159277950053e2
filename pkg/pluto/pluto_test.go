package pluto_test

import (
	"strings"
	"testing"

	"github.com/mkerian10/pluto/internal/errors"
	"github.com/mkerian10/pluto/pkg/pluto"
)

func check(t *testing.T, src string) *pluto.Program {
	t.Helper()
	return pluto.CheckSource(src)
}

func mustOk(t *testing.T, src string) *pluto.Program {
	t.Helper()
	program := check(t, src)
	if program.Diagnostics.HasErrors() {
		t.Fatalf("unexpected diagnostics:\n%s", program.Diagnostics.Format())
	}
	return program
}

func mustFail(t *testing.T, src, kind string) *pluto.Program {
	t.Helper()
	program := check(t, src)
	if !program.Diagnostics.HasErrors() {
		t.Fatalf("expected a %s diagnostic, got none", kind)
	}
	if !hasKind(program.Diagnostics, kind) {
		t.Fatalf("expected %s, got:\n%s", kind, program.Diagnostics.Format())
	}
	return program
}

func hasKind(diags *errors.List, kind string) bool {
	for _, d := range diags.All() {
		if d.Kind == kind {
			return true
		}
	}
	return false
}

func TestNullablePropagationInVoidFunction(t *testing.T) {
	mustOk(t, `
fn get() string? {
	return none
}

fn process() {
	let s = get()
	let v = s?
	print(v)
}
`)
}

func TestNullablePropagationNeedsNullableReturn(t *testing.T) {
	mustFail(t, `
fn get() string? {
	return none
}

fn process() int {
	let s = get()
	let v = s?
	return 1
}
`, "TypeError::NullableNotAllowed")
}

func TestFallibleInferencePropagatesTransitively(t *testing.T) {
	src := `
error Broken {
	why: string
}

fn raiser() {
	raise Broken { why: "boom" }
}

fn mid() {
	raiser()!
}

fn top() {
	mid()
}
`
	program := mustFail(t, src, "ErrorHandling::Unhandled")
	if !program.Fallible["raiser"] || !program.Fallible["mid"] {
		t.Errorf("fallible set = %v, want raiser and mid", program.Fallible)
	}
}

func TestFallibleCallHandledWithCatch(t *testing.T) {
	mustOk(t, `
error Broken {
	why: string
}

fn load() int {
	raise Broken { why: "boom" }
	return 0
}

fn top() int {
	let v = load() catch e {
		0
	}
	return v
}
`)
}

func TestAmbientDesugarWithShadowing(t *testing.T) {
	src := `
class Logger {
	fn info(self, msg: string) {
		print(msg)
	}
}

class S uses Logger {
	fn f(self) {
		logger.info("a")
		let logger = 42
		print(logger)
	}
}

app Main {
	ambient Logger
	fn main() {
	}
}
`
	program := mustOk(t, src)

	// The first use is rewritten to self.logger; the shadowed one is not.
	rendered := program.AST.String()
	if !strings.Contains(rendered, "self.logger.info") {
		t.Errorf("ambient use was not rewritten to self.logger:\n%s", rendered)
	}
	if !strings.Contains(rendered, "print(logger)") {
		t.Errorf("shadowed local was rewritten:\n%s", rendered)
	}
}

func TestUnregisteredAmbient(t *testing.T) {
	mustFail(t, `
class Logger {
	fn info(self, msg: string) {
	}
}

class S uses Logger {
	fn f(self) {
		logger.info("a")
	}
}

app Main {
	fn main() {
	}
}
`, "DIError::UnregisteredAmbient")
}

func TestDICycle(t *testing.T) {
	src := `
class A[b: B] {
}

class B[a: A] {
}

app Main[a: A] {
	fn main() {
	}
}
`
	program := mustFail(t, src, "DIError::Cycle")
	for _, d := range program.Diagnostics.All() {
		if d.Kind == "DIError::Cycle" {
			if !strings.Contains(d.Message, "A -> B -> A") && !strings.Contains(d.Message, "B -> A -> B") {
				t.Errorf("cycle message should list the full cycle, got %q", d.Message)
			}
		}
	}
}

func TestDIOrderRespectsDependencies(t *testing.T) {
	src := `
class Config {
}

class Database[cfg: Config] {
}

class Repo[db: Database] {
}

app Main[repo: Repo] {
	fn main() {
	}
}
`
	program := mustOk(t, src)
	order := program.DI.Order
	if idx(order, "Config") > idx(order, "Database") || idx(order, "Database") > idx(order, "Repo") {
		t.Errorf("DI order %v does not respect dependencies", order)
	}
}

func idx(list []string, name string) int {
	for i, s := range list {
		if s == name {
			return i
		}
	}
	return -1
}

func TestMissingProvider(t *testing.T) {
	mustFail(t, `
class A[b: Missing] {
}

app Main[a: A] {
	fn main() {
	}
}
`, "DIError::MissingProvider")
}

func TestManualConstructionOfInjectedClass(t *testing.T) {
	mustFail(t, `
class Logger {
}

class S uses Logger {
}

app Main {
	ambient Logger
	fn main() {
		let s = S {}
	}
}
`, "DIError::ManualConstruction")
}

func TestGenericAmbientRejected(t *testing.T) {
	mustFail(t, `
class Box<T> {
	value: T
}

class S uses Box {
}

app Main {
	ambient Box
	fn main() {
	}
}
`, "DIError::GenericAmbient")
}

func TestMonomorphizationFanout(t *testing.T) {
	src := `
fn id<T>(x: T) T {
	return x
}

fn use_all() {
	let a = id(1)
	let b = id("s")
	let c = id(true)
	print(a)
	print(b)
	print(c)
}
`
	program := mustOk(t, src)

	var names []string
	for _, inst := range program.Mono.Instances {
		names = append(names, inst.Mangled)
	}
	for _, want := range []string{"id__int", "id__string", "id__bool"} {
		if idx(names, want) < 0 {
			t.Errorf("instances = %v, missing %s", names, want)
		}
	}
	if len(names) != 3 {
		t.Errorf("instances = %v, want exactly 3", names)
	}
}

func TestMonomorphizationTransitive(t *testing.T) {
	src := `
fn inner<T>(x: T) T {
	return x
}

fn outer<T>(x: T) T {
	return inner(x)
}

fn use_it() {
	let v = outer(1)
	print(v)
}
`
	program := mustOk(t, src)
	var names []string
	for _, inst := range program.Mono.Instances {
		names = append(names, inst.Mangled)
	}
	for _, want := range []string{"outer__int", "inner__int"} {
		if idx(names, want) < 0 {
			t.Errorf("instances = %v, missing %s", names, want)
		}
	}
}

func TestGenericClassInstantiation(t *testing.T) {
	src := `
class Box<T> {
	value: T
	fn get(self) T {
		return self.value
	}
}

fn use_it() int {
	let b = Box { value: 7 }
	return b.get()
}
`
	program := mustOk(t, src)
	if len(program.Mono.Instances) != 1 || program.Mono.Instances[0].Mangled != "Box__int" {
		t.Errorf("instances = %+v, want Box__int", program.Mono.Instances)
	}
}

func TestBoundNotSatisfied(t *testing.T) {
	mustFail(t, `
trait Show {
	fn show(self) string
}

class Plain {
}

fn render<T: Show>(x: T) {
}

fn use_it() {
	let p = Plain {}
	render(p)
}
`, "TypeError::BoundNotSatisfied")
}

func TestImmutableRootRejectsDeepAssign(t *testing.T) {
	mustFail(t, `
class Inner {
	val: int
}

class Outer {
	inner: Inner
}

fn f() {
	let o = Outer { inner: Inner { val: 0 } }
	o.inner.val = 1
}
`, "MutabilityError::AssignToImmutable")
}

func TestMutableRootAllowsDeepAssign(t *testing.T) {
	mustOk(t, `
class Inner {
	val: int
}

class Outer {
	inner: Inner
}

fn f() {
	let mut o = Outer { inner: Inner { val: 0 } }
	o.inner.val = 1
}
`)
}

func TestMutSelfRequiredForFieldAssign(t *testing.T) {
	mustFail(t, `
class Counter {
	count: int
	fn bump(self) {
		self.count = 1
	}
}
`, "MutabilityError::AssignToImmutable")
}

func TestMutSelfCallNeedsMutableReceiver(t *testing.T) {
	mustFail(t, `
class Counter {
	count: int
	fn bump(mut self) {
		self.count += 1
	}
}

fn f() {
	let c = Counter { count: 0 }
	c.bump()
}
`, "MutabilityError::ReceiverNotMutable")
}

func TestMutatingBuiltinNeedsMutableRoot(t *testing.T) {
	mustFail(t, `
fn f() {
	let xs: Array<int> = []
	xs.push(1)
}
`, "MutabilityError::ReceiverNotMutable")

	mustOk(t, `
fn f() {
	let mut xs: Array<int> = []
	xs.push(1)
}
`)
}

func TestDeadMutWarningDoesNotHalt(t *testing.T) {
	program := mustOk(t, `
fn f() int {
	let mut x = 1
	return x
}
`)
	found := false
	for _, d := range program.Diagnostics.All() {
		if d.Kind == "Warning::DeadMut" && d.Severity == errors.SeverityWarning {
			found = true
		}
	}
	if !found {
		t.Error("expected a DeadMut warning")
	}
}

func TestNullableNarrowing(t *testing.T) {
	mustOk(t, `
fn f(x: int?) int {
	if x != none {
		return x + 1
	}
	return 0
}
`)
}

func TestNullableNotNarrowedWithoutGuard(t *testing.T) {
	mustFail(t, `
fn f(x: int?) int {
	return x + 1
}
`, "TypeError::Mismatch")
}

func TestNullableWideningAndCoalesce(t *testing.T) {
	mustOk(t, `
fn f() int {
	let y: int? = 5
	let z = y ?? 0
	return z
}
`)
}

func TestNullableNotAssignableToPlain(t *testing.T) {
	mustFail(t, `
fn f(x: int?) int {
	let y: int = x
	return y
}
`, "TypeError::Mismatch")
}

func TestNestedNullableRejected(t *testing.T) {
	mustFail(t, `
fn f(x: int??) {
}
`, "TypeError::NullableNotAllowed")
}

func TestExhaustivenessFailure(t *testing.T) {
	src := `
enum C {
	A
	B
	D
}

fn pick(c: C) int {
	return match c {
		C.A => 1
		C.B => 2
	}
}
`
	program := mustFail(t, src, "MatchError::NonExhaustive")
	found := false
	for _, d := range program.Diagnostics.All() {
		if d.Kind == "MatchError::NonExhaustive" && strings.Contains(d.Message, "C.D") {
			found = true
		}
	}
	if !found {
		t.Errorf("witness C.D missing:\n%s", program.Diagnostics.Format())
	}
}

func TestExhaustiveMatchAccepted(t *testing.T) {
	mustOk(t, `
enum C {
	A
	B
}

fn pick(c: C) int {
	return match c {
		C.A => 1
		C.B => 2
	}
}
`)
}

func TestUnreachableArm(t *testing.T) {
	mustFail(t, `
enum C {
	A
	B
}

fn pick(c: C) int {
	return match c {
		C.A => 1
		C.B => 2
		C.A => 3
	}
}
`, "MatchError::UnreachableArm")
}

func TestMatchDestructuring(t *testing.T) {
	mustOk(t, `
enum Shape {
	Point
	Circle { radius: float }
}

fn area(s: Shape) float {
	return match s {
		Shape.Point => 0.0
		Shape.Circle { radius } => radius * radius
	}
}
`)
}

func TestNominalEqualityLaw(t *testing.T) {
	mustFail(t, `
class A {
	x: int
}

class B {
	x: int
}

fn f() {
	let a: A = B { x: 1 }
}
`, "TypeError::Mismatch")
}

func TestTraitSatisfactionRequiresImpl(t *testing.T) {
	// Structurally matching method set without `impl` does not satisfy.
	mustFail(t, `
trait Shape {
	fn area(self) float
}

class Square {
	side: float
	fn area(self) float {
		return self.side * self.side
	}
}

fn total(s: Shape) float {
	return s.area()
}

fn f() float {
	let sq = Square { side: 2.0 }
	return total(sq)
}
`, "TypeError::Mismatch")
}

func TestTraitSatisfactionWithImpl(t *testing.T) {
	mustOk(t, `
trait Shape {
	fn area(self) float
}

class Square impl Shape {
	side: float
	fn area(self) float {
		return self.side * self.side
	}
}

fn total(s: Shape) float {
	return s.area()
}
`)
}

func TestTraitMissingMethod(t *testing.T) {
	mustFail(t, `
trait Shape {
	fn area(self) float
}

class Square impl Shape {
	side: float
}
`, "TypeError::TraitNotSatisfied")
}

func TestTraitDefaultMethodInherited(t *testing.T) {
	mustOk(t, `
trait Greeter {
	fn name(self) string
	fn greet(self) string {
		return "hello"
	}
}

class English impl Greeter {
	fn name(self) string {
		return "en"
	}
}
`)
}

func TestStringInterpolationTyping(t *testing.T) {
	mustOk(t, `
fn f(n: int, s: string) string {
	return "n={n} s={s}"
}
`)

	mustFail(t, `
class Opaque {
}

fn f(o: Opaque) string {
	return "o={o}"
}
`, "TypeError::Mismatch")
}

func TestClosureCaptureTyping(t *testing.T) {
	mustOk(t, `
fn f() int {
	let base = 10
	let add = (x: int) => x + base
	return add(5)
}
`)
}

func TestUndefinedName(t *testing.T) {
	mustFail(t, `
fn f() {
	print(missing)
}
`, "TypeError::UndefinedName")
}

func TestArityMismatch(t *testing.T) {
	mustFail(t, `
fn g(x: int) int {
	return x
}

fn f() int {
	return g(1, 2)
}
`, "TypeError::ArityMismatch")
}

func TestPipelineHaltsAtFirstFailingPass(t *testing.T) {
	// The undefined type fails registration; later passes must not run and
	// must not panic on the missing environment.
	program := mustFail(t, `
fn f(x: Missing) {
}
`, "TypeError::UnknownType")
	if program.Mono != nil {
		t.Error("monomorphizer ran after a failing pass")
	}
}
