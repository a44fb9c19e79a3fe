package core_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"math"

	gomock "github.com/golang/mock/gomock"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/bunnyvm/core"
)

const safeCracking = `
cpy a b
dec b
cpy a d
cpy 0 a
cpy b c
inc a
dec c
jnz c -2
dec d
jnz d -5
dec b
cpy b c
cpy c d
dec d
inc c
jnz d -2
tgl c
cpy -16 c
jnz 1 c
cpy 84 c
jnz 71 d
inc a
inc d
jnz d -2
inc c
jnz c -5
`

func mustNew(text string) *core.Interpreter {
	it, err := core.New(text)
	Expect(err).NotTo(HaveOccurred())
	return it
}

func register(it *core.Interpreter, name string) int {
	v, err := it.Register(name)
	Expect(err).NotTo(HaveOccurred())
	return v
}

var _ = Describe("Interpreter", func() {
	It("should start zeroed", func() {
		it := mustNew("inc a")

		Expect(it.Registers()).To(Equal(core.RegisterFile{}))
		Expect(it.PC()).To(Equal(0))
		Expect(it.IsHalted()).To(BeFalse())
	})

	It("should fail construction on bad text", func() {
		it, err := core.New("cpy 1 a\nhlt")

		Expect(it).To(BeNil())
		var parseErr *core.ParseError
		Expect(errors.As(err, &parseErr)).To(BeTrue())
	})

	Context("register access", func() {
		var it *core.Interpreter

		BeforeEach(func() {
			it = mustNew("inc a")
		})

		It("should round-trip values", func() {
			for _, name := range []string{"a", "b", "c", "d"} {
				for _, v := range []int{0, -1, 7, math.MaxInt, math.MinInt} {
					Expect(it.SetRegister(name, v)).To(Succeed())
					Expect(register(it, name)).To(Equal(v))
				}
			}
		})

		It("should reject unknown registers without touching state", func() {
			before := it.Registers()

			err := it.SetRegister("e", 5)
			var regErr *core.RegisterError
			Expect(errors.As(err, &regErr)).To(BeTrue())
			Expect(regErr.Name).To(Equal("e"))

			_, err = it.Register("pc")
			Expect(errors.As(err, &regErr)).To(BeTrue())

			Expect(it.Registers()).To(Equal(before))
		})
	})

	Context("execution", func() {
		It("should run the step-loop-decrement example", func() {
			it := mustNew("cpy 41 a\ninc a\ninc a\ndec a\njnz a 2\ndec a")

			Expect(it.Execute()).To(Succeed())

			Expect(register(it, "a")).To(Equal(42))
			Expect(it.IsHalted()).To(BeTrue())
			Expect(it.PC()).To(Equal(it.Len()))
			Expect(it.Steps()).To(Equal(uint64(5)))
		})

		It("should run the toggle example", func() {
			it := mustNew("cpy 2 a\ntgl a\ntgl a\ntgl a\ncpy 1 a\ndec a\ndec a")

			Expect(it.Execute()).To(Succeed())

			Expect(register(it, "a")).To(Equal(3))
			Expect(it.IsHalted()).To(BeTrue())

			inst, _ := it.Instruction(3)
			Expect(inst).To(Equal(core.Inc(core.Reg(core.RegA))))
			inst, _ = it.Instruction(4)
			Expect(inst).To(Equal(core.Jnz(core.Imm(1), core.Reg(core.RegA))))
		})

		It("should compute the safe code", func() {
			it := mustNew(safeCracking)
			Expect(it.SetRegister("a", 7)).To(Succeed())

			Expect(it.Execute()).To(Succeed())

			Expect(register(it, "a")).To(Equal(11004))
		})

		It("should halt on an empty program", func() {
			it := mustNew("")

			Expect(it.Execute()).To(Succeed())
			Expect(it.IsHalted()).To(BeTrue())
			Expect(it.Steps()).To(BeZero())
		})

		It("should halt when jumping before the first instruction", func() {
			it := mustNew("inc a\ninc b\njnz 1 -3\ninc c")

			Expect(it.Execute()).To(Succeed())

			Expect(it.IsHalted()).To(BeTrue())
			Expect(it.PC()).To(Equal(it.Len()))
			Expect(it.Registers()).To(Equal(core.RegisterFile{1, 1, 0, 0}))
		})

		It("should jump by exactly the offset", func() {
			it := mustNew("jnz 1 2\ninc a\ninc b\njnz 1 -1000")

			Expect(it.Execute()).To(Succeed())

			Expect(it.Registers()).To(Equal(core.RegisterFile{0, 1, 0, 0}))
		})

		It("should survive extreme jump offsets", func() {
			it := mustNew("cpy 1 a\njnz a b\ninc c")
			Expect(it.SetRegister("b", math.MinInt)).To(Succeed())

			Expect(it.Execute()).To(Succeed())
			Expect(it.IsHalted()).To(BeTrue())

			it = mustNew("cpy 1 a\njnz a b\ninc c")
			Expect(it.SetRegister("b", math.MaxInt)).To(Succeed())

			Expect(it.Execute()).To(Succeed())
			Expect(register(it, "c")).To(Equal(0))
		})

		It("should not jump on a zero condition", func() {
			it := mustNew("jnz 0 5\ninc a")

			Expect(it.Execute()).To(Succeed())
			Expect(register(it, "a")).To(Equal(1))
		})

		It("should return immediately once halted", func() {
			it := mustNew("inc a")
			Expect(it.Execute()).To(Succeed())

			Expect(it.Execute()).To(Succeed())

			Expect(register(it, "a")).To(Equal(1))
			ok, err := it.Step()
			Expect(err).NotTo(HaveOccurred())
			Expect(ok).To(BeFalse())
		})
	})

	Context("self-modification", func() {
		It("should make a forward toggle visible when reached", func() {
			it := mustNew("tgl 2\ninc a\ninc b")

			Expect(it.Execute()).To(Succeed())

			Expect(it.Registers()).To(Equal(core.RegisterFile{1, -1, 0, 0}))
		})

		It("should toggle already executed instructions", func() {
			it := mustNew("inc a\ntgl -1\njnz b 2\ncpy 0 b\ninc c")

			Expect(it.Execute()).To(Succeed())

			inst, _ := it.Instruction(0)
			Expect(inst.Opcode).To(Equal(core.OpDec))
		})

		It("should ignore out-of-range toggles", func() {
			for _, text := range []string{
				"tgl -1\ninc a",
				"tgl 2\ninc a",
				"cpy -100 b\ntgl b\ninc a",
			} {
				it := mustNew(text)
				before := it.Program()

				Expect(it.Execute()).To(Succeed())

				Expect(it.Program()).To(Equal(before))
				Expect(register(it, "a")).To(Equal(1))
			}
		})

		It("should toggle itself", func() {
			it := mustNew("tgl 0")

			Expect(it.Execute()).To(Succeed())

			inst, _ := it.Instruction(0)
			Expect(inst).To(Equal(core.Inc(core.Imm(0))))
		})
	})

	Context("literal destinations", func() {
		DescribeTable("should be no-ops that still advance",
			func(text string) {
				it := mustNew(text)
				Expect(it.SetRegister("a", 9)).To(Succeed())

				ok, err := it.Step()

				Expect(err).NotTo(HaveOccurred())
				Expect(ok).To(BeTrue())
				Expect(it.PC()).To(Equal(1))
				Expect(it.Registers()).To(Equal(core.RegisterFile{9, 0, 0, 0}))
			},
			Entry("cpy", "cpy a 3\ninc b"),
			Entry("inc", "inc 3\ninc b"),
			Entry("dec", "dec 3\ninc b"),
		)

		It("should tolerate a jnz toggled into cpy", func() {
			it := mustNew("tgl 1\njnz 1 2\ninc a")

			Expect(it.Execute()).To(Succeed())

			Expect(it.Registers()).To(Equal(core.RegisterFile{1, 0, 0, 0}))
		})
	})

	Context("clone", func() {
		It("should copy registers, counter and toggled program", func() {
			it := mustNew("tgl 1\ninc a\ninc a")
			_, err := it.Step()
			Expect(err).NotTo(HaveOccurred())

			clone := it.Clone()
			Expect(clone.Snapshot()).To(Equal(it.Snapshot()))

			Expect(clone.Execute()).To(Succeed())
			Expect(register(clone, "a")).To(Equal(0))

			Expect(it.PC()).To(Equal(1))
			Expect(register(it, "a")).To(Equal(0))
			inst, _ := it.Instruction(2)
			Expect(inst.Opcode).To(Equal(core.OpInc))
		})

		It("should support brute-forcing a seed register", func() {
			base := mustNew(safeCracking)
			want := map[int]int{6: 6684, 7: 11004, 8: 46284}

			for seed, code := range want {
				trial := base.Clone()
				Expect(trial.SetRegister("a", seed)).To(Succeed())
				Expect(trial.Execute()).To(Succeed())
				Expect(register(trial, "a")).To(Equal(code))
			}

			Expect(base.Steps()).To(BeZero())
		})
	})

	Context("step budget", func() {
		It("should stop an endless loop", func() {
			it := mustNew("inc a\njnz 1 -1")
			it.SetStepBudget(100)

			err := it.Execute()

			Expect(errors.Is(err, core.ErrBudgetExceeded)).To(BeTrue())
			var budgetErr *core.BudgetExceededError
			Expect(errors.As(err, &budgetErr)).To(BeTrue())
			Expect(budgetErr.Budget).To(Equal(uint64(100)))
			Expect(it.Steps()).To(Equal(uint64(100)))
			Expect(it.IsHalted()).To(BeFalse())
		})

		It("should resume after raising the budget", func() {
			it := mustNew("cpy 5 b\ninc a\ndec b\njnz b -2")
			it.SetStepBudget(4)
			Expect(it.Execute()).To(MatchError(core.ErrBudgetExceeded))

			it.SetStepBudget(0)
			Expect(it.Execute()).To(Succeed())

			Expect(register(it, "a")).To(Equal(5))
		})
	})

	Context("cancellation", func() {
		It("should stop when the context is cancelled", func() {
			it := mustNew("jnz 1 0")
			ctx, cancel := context.WithCancel(context.Background())
			cancel()

			err := it.ExecuteContext(ctx)

			Expect(err).To(MatchError(context.Canceled))
			Expect(it.IsHalted()).To(BeFalse())
		})

		It("should not run any instruction on a dead context", func() {
			it := mustNew("inc a\njnz 1 -1")
			ctx, cancel := context.WithCancel(context.Background())
			cancel()

			Expect(it.ExecuteContext(ctx)).To(MatchError(context.Canceled))
			Expect(it.Steps()).To(BeZero())
			Expect(register(it, "a")).To(Equal(0))
		})
	})

	Context("output", func() {
		var (
			mockCtrl *gomock.Controller
			sink     *MockOutputSink
		)

		BeforeEach(func() {
			mockCtrl = gomock.NewController(GinkgoT())
			sink = NewMockOutputSink(mockCtrl)
		})

		AfterEach(func() {
			mockCtrl.Finish()
		})

		It("should deliver transmitted values to the sink in order", func() {
			gomock.InOrder(
				sink.EXPECT().Emit(3),
				sink.EXPECT().Emit(2),
				sink.EXPECT().Emit(1),
			)
			it, err := core.NewBuilder().
				WithOutputSink(sink).
				Build("cpy 3 a\nout a\ndec a\njnz a -2")
			Expect(err).NotTo(HaveOccurred())

			Expect(it.Execute()).To(Succeed())

			Expect(it.Emitted()).To(Equal(uint64(3)))
		})

		It("should accept a plain function as the sink", func() {
			var got []int
			it, err := core.NewBuilder().
				WithOutputSink(core.OutputFunc(func(v int) {
					got = append(got, v)
				})).
				Build("out 5\nout -2\nout b")
			Expect(err).NotTo(HaveOccurred())

			Expect(it.Execute()).To(Succeed())

			Expect(got).To(Equal([]int{5, -2, 0}))
		})

		It("should stream values one at a time", func() {
			it := mustNew("out 0\nout 1\njnz 1 -2")

			for i := 0; i < 6; i++ {
				v, ok, err := it.RunUntilOutput()
				Expect(err).NotTo(HaveOccurred())
				Expect(ok).To(BeTrue())
				Expect(v).To(Equal(i % 2))
			}

			Expect(it.Steps()).To(Equal(uint64(8)))
		})

		It("should drain queued values before resuming", func() {
			it := mustNew("out 4\nout 5")
			Expect(it.Execute()).To(Succeed())

			v, ok, err := it.RunUntilOutput()
			Expect(err).NotTo(HaveOccurred())
			Expect(ok).To(BeTrue())
			Expect(v).To(Equal(4))

			v, _ = it.NextOutput()
			Expect(v).To(Equal(5))

			_, ok, err = it.RunUntilOutput()
			Expect(err).NotTo(HaveOccurred())
			Expect(ok).To(BeFalse())
		})
	})

	Context("RunUntil", func() {
		It("should stop once the predicate holds", func() {
			it := mustNew("inc a\njnz 1 -1")

			err := it.RunUntil(func(it *core.Interpreter) bool {
				return it.Registers().Get(core.RegA) == 10
			})

			Expect(err).NotTo(HaveOccurred())
			Expect(register(it, "a")).To(Equal(10))
			Expect(it.PC()).To(Equal(1))
		})
	})

	Context("builder", func() {
		It("should preset registers and the budget", func() {
			it, err := core.NewBuilder().
				WithRegister("a", 7).
				WithStepBudget(1 << 20).
				Build(safeCracking)
			Expect(err).NotTo(HaveOccurred())
			Expect(it.StepBudget()).To(Equal(uint64(1 << 20)))

			Expect(it.Execute()).To(Succeed())
			Expect(register(it, "a")).To(Equal(11004))
		})

		It("should reject unknown preset registers", func() {
			_, err := core.NewBuilder().WithRegister("q", 1).Build("inc a")

			var regErr *core.RegisterError
			Expect(errors.As(err, &regErr)).To(BeTrue())
		})

		It("should not share presets between derived builders", func() {
			base := core.NewBuilder().WithRegister("a", 1)
			_ = base.WithRegister("b", 2)

			it, err := base.Build("inc c")
			Expect(err).NotTo(HaveOccurred())
			Expect(register(it, "b")).To(Equal(0))
		})
	})

	Context("when printing state", func() {
		It("should show registers and the instructions around the PC", func() {
			it := mustNew("cpy 41 a\ninc a\ninc a\ndec a\njnz a 2\ndec a")
			Expect(it.Step()).To(BeTrue())

			var buf bytes.Buffer
			core.PrintState(&buf, it)

			out := buf.String()
			Expect(out).To(ContainSubstring("State@PC 1"))
			Expect(out).To(ContainSubstring("41"))
			Expect(out).To(ContainSubstring("cpy 41 a"))
			Expect(out).To(ContainSubstring("jnz a 2"))
			Expect(out).To(ContainSubstring("steps=1 halted=false"))
		})
	})

	Context("when logging state", func() {
		var buf bytes.Buffer

		BeforeEach(func() {
			buf.Reset()
			prev := slog.Default()
			slog.SetDefault(slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{
				Level: slog.LevelDebug,
			})))
			DeferCleanup(func() { slog.SetDefault(prev) })
		})

		It("should write a checkpoint with PC and registers", func() {
			it := mustNew("cpy 41 a\ninc a")
			Expect(it.Execute()).To(Succeed())

			core.LogState(it)

			out := buf.String()
			Expect(out).To(ContainSubstring(`"msg":"StateCheckpoint"`))
			Expect(out).To(ContainSubstring(`"PC":2`))
			Expect(out).To(ContainSubstring(`"Halted":true`))
			Expect(out).To(ContainSubstring("42"))
		})
	})
})
