// Copyright © 2025 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package main

import "github.com/js-arias/command"

func init() {
	app.Add(countFilesGuide)
	app.Add(projectsGuide)
}

var projectsGuide = &command.Command{
	Usage: "project-files",
	Short: "about project files",
	Long: `
MicDiff requires several files to read and process microbiome data. To reduce
the burden of keeping track of many files, a single project file is used to
hold the reference of all files required in the analysis. This guide explains
the structure of the file, but most of the time, the best and most secure way
to edit or view this file is by using micdiff commands.

A project file is a tab-delimited file with the following fields:

	- dataset  for the kind of file
	- path     for the path of the file

Here is an example file:

	# micdiff project files
	dataset	path
	counts	counts.tab
	samples	metadata.tab
	fitparam	fit-params.tab
	inference	inference.tab

The valid file types are:

- Count tables. Defined by the dataset keyword "counts". This file contains
  the counts of each microbial feature on each sample in the form of a
  tab-delimited file. The recommended way to add a count table is by using
  the command 'micdiff set'.
- Sample metadata. Defined by the dataset keyword "samples". This file
  contains the values of each metadata variable on each sample in the form
  of a tab-delimited file. The recommended way to add a metadata file is by
  using the command 'micdiff set'.
- Sampling parameters. Defined by the dataset keyword "fitparam". This file
  contains the parameters used when sampling the posterior distribution,
  such as the number of chains and draws. The recommended way to edit this
  file is by using the command 'micdiff param'.
- Inference data. Defined by the dataset keyword "inference". This file
  contains the posterior draws of a fitted model in the form of a
  tab-delimited file. This file is created by the command 'micdiff fit'.
	`,
}

var countFilesGuide = &command.Command{
	Usage: "count-files",
	Short: "about count table files",
	Long: `
In MicDiff, the counts of the microbial features observed on each sample are
stored in a tab-delimited file. Features are usually operational taxonomic
units, amplicon sequence variants, or taxa from a taxonomic classification,
but any feature-per-sample count table can be used.

The recommended way to add a count table to a MicDiff project is by using the
command 'micdiff set'.

A count table file is a tab-delimited file with the following columns:

	- feature  the name of the microbial feature
	- sample   the name of the sample
	- count    the number of reads of the feature in the sample

Here is an example file:

	feature	sample	count
	otu1	sample1	153
	otu1	sample2	12
	otu2	sample1	3
	otu2	sample2	780

Entries that are not defined in the file are assumed to be zero counts.

In a MicDiff project, the file that contains the count table is indicated
with the "counts" keyword. The sample metadata, indicated with the "samples"
keyword, is also a tab-delimited file, in which the first column, "sample",
is the name of the sample, and any other column is a metadata variable that
can be used in a model formula.
	`,
}
