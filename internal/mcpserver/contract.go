package mcpserver

// PowerNetConventions describes how Raido classifies power nets and how
// that classification shapes traversal. LLM consumers should read this
// before interpreting neighborhood or path results.
const PowerNetConventions = `# Raido Power Net Conventions

Raido separates SIGNAL nets from POWER nets when it walks a design's
connectivity graph. Power rails touch almost every component, so
following them turns every query into "everything connects to
everything". Traversal therefore skips power nets unless a query sets
include_power=true.

## Classification

A net is classified as power when its name matches any configured
pattern. The default patterns are:

` + "```" + `
VCC*   VDD*   VSS*   GND*   +*V*   -*V*
` + "```" + `

Examples that match: VCC, VCC_3V3, VDD_CORE, VSS, GND, GND_A, +5V,
+3V3, -12V. A name like AGND does NOT match GND* (patterns anchor at
the start of the name).

Patterns are glob-style prefix/infix matches, case-sensitive, matched
against the full net name. The pattern set is configurable per
deployment (graph.power_patterns in the config file).

In addition to patterns, the standard KiCad global power symbol names
(VCC, VDD, GND, VSS, +3V3, +5V, -12V, VBUS, and the rest of the library
set) are always classified as power.

## Effect on queries

- analyze_functional_block (neighborhood): with include_power=false,
  two components joined ONLY by a power rail are not neighbors.
- find_circuit_paths: a hop is traversable when the components share at
  least one non-power net (or any net when include_power=true). Hop
  counts are component hops, not net hops.
- Highlighted paths render each hop's net; when several nets join a
  pair, the alphabetically first eligible net is reported.

## Rules for consumers

1. Default to include_power=false for signal-flow questions.
2. Use include_power=true only when tracing supply distribution.
3. Never infer supply topology from neighborhood queries alone; use
   the per-component connection report, which lists power membership
   explicitly per net.
`
