// Package rcs reads RCS ",v" files: it parses the admin header, revision
// tree and deltatexts, reconstructs the text of any revision, and
// attributes each line of a revision to the revision that introduced it.
package rcs

/*
rcstext   -> admin {delta}* desc {deltatext}*

admin     -> head       {num};
             { branch   {num}; }
             access     {id}*;
             symbols    {sym : num}*;
             locks      {id : num}*;  {strict  ;}
             { comment  {string}; }
             { expand   {string}; }
             { newphrase }*

delta     -> num
             date       num;
             author     id;
             state      {id};
             branches   {num}*;
             next       {num};
             { commitid sym; }
             { newphrase }*

desc      -> desc       string

deltatext -> num
             log        string
             { newphrase }*
             text       string

num       -> {digit | .}+
string    -> @ { any character, with @ doubled }* @
newphrase -> id word* ;

The head revision's text is stored whole. Every other trunk revision stores
a reverse delta: the edit script that turns the next newer trunk revision
into it. Branch revisions store forward deltas from their predecessor.

Edit scripts are lines of

  aN M   add the M lines that follow, after line N of the source
  dN M   delete M lines starting at line N of the source
*/
